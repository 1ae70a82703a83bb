package domain

// GeoPoint - географическая координата в градусах
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// AxisOrder описывает порядок осей в парах координат от конкретного источника данных.
type AxisOrder string

const (
	// AxisOrderAuto - порядок определяется эвристикой по диапазонам значений
	AxisOrderAuto AxisOrder = "auto"
	// AxisOrderLatLon - пары вида [lat, lon]
	AxisOrderLatLon AxisOrder = "latlon"
	// AxisOrderLonLat - пары вида [lon, lat] (GeoJSON)
	AxisOrderLonLat AxisOrder = "lonlat"
)

// ParseAxisOrder разбирает значение из конфига или запроса. Пустая строка даёт AxisOrderAuto.
func ParseAxisOrder(s string) (AxisOrder, bool) {
	switch AxisOrder(s) {
	case "", AxisOrderAuto:
		return AxisOrderAuto, true
	case AxisOrderLatLon:
		return AxisOrderLatLon, true
	case AxisOrderLonLat:
		return AxisOrderLonLat, true
	}
	return AxisOrderAuto, false
}
