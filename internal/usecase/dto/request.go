package dto

import "encoding/json"

// VisitorRequest - данные запроса посетителя, собранные транспортом (HTTP или Lambda)
type VisitorRequest struct {
	IP        string
	UserAgent string
	Referer   string
	Path      string
}

// ConfidenceRadiusRequest - запрос оценки радиуса по полигону доверия
type ConfidenceRadiusRequest struct {
	Polygon   json.RawMessage `json:"polygon" validate:"required" swaggertype:"array,object"`
	AxisOrder string          `json:"axis_order,omitempty" validate:"omitempty,axis_order" enums:"auto,latlon,lonlat"`
	Lenient   *bool           `json:"lenient,omitempty"`
}

// RecentVisitsRequest - параметры списка последних визитов
type RecentVisitsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

// StatsRequest - окно статистики в часах
type StatsRequest struct {
	WindowHours int `query:"window_hours" validate:"omitempty,min=1,max=720"`
}
