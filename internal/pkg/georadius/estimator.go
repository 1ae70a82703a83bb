// Package georadius оценивает радиус точности по полигону доверия,
// который возвращают провайдеры IP-геолокации.
//
// Радиус считается как максимальное расстояние (haversine, R = 6371 км)
// от арифметического центроида до любой вершины. Центроид не сферический,
// поэтому оценка годится для областей масштаба города или региона.
//
// Все функции пакета чистые и безопасны для конкурентного вызова.
package georadius

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/pkg/utils"
)

// Options управляет разбором полигона.
type Options struct {
	// AxisOrder - порядок осей для неразмеченных пар. Пустое значение равно AxisOrderAuto.
	AxisOrder domain.AxisOrder
	// Lenient отбрасывает нераспознанные вершины вместо отказа всего полигона.
	Lenient bool
}

// Result - оценка радиуса вместе с тем, как она была получена.
type Result struct {
	RadiusKm      float64         `json:"radius_km"`
	Centroid      domain.GeoPoint `json:"centroid"`
	PointsUsed    int             `json:"points_used"`
	PointsSkipped int             `json:"points_skipped"`
}

// EstimateRadiusKm возвращает радиус в км, округлённый до 2 знаков,
// в строгом режиме с автоопределением порядка осей.
func EstimateRadiusKm(polygon any) (float64, error) {
	res, err := Estimate(polygon, Options{})
	if err != nil {
		return 0, err
	}
	return res.RadiusKm, nil
}

// Estimate разбирает полигон и считает радиус.
//
// polygon может быть любым срезом или массивом, а также json.RawMessage / []byte
// с JSON-массивом. Ошибка всегда *InvalidPolygonError.
func Estimate(polygon any, opts Options) (Result, error) {
	items, err := asSequence(polygon)
	if err != nil {
		return Result{}, err
	}

	points := make([]domain.GeoPoint, 0, len(items))
	skipped := 0
	for i, raw := range items {
		p, err := resolvePoint(raw, opts.AxisOrder)
		if err != nil {
			if !opts.Lenient {
				return Result{}, &InvalidPolygonError{Index: i, Reason: err.Error()}
			}
			skipped++
			continue
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return Result{}, polygonError(fmt.Sprintf("no valid points (%d skipped)", skipped))
	}

	center := Centroid(points)
	return Result{
		RadiusKm:      utils.RoundTo(MaxDistanceKm(center, points), 2),
		Centroid:      center,
		PointsUsed:    len(points),
		PointsSkipped: skipped,
	}, nil
}

// Centroid - среднее арифметическое широт и долгот.
func Centroid(points []domain.GeoPoint) domain.GeoPoint {
	if len(points) == 0 {
		return domain.GeoPoint{}
	}
	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	n := float64(len(points))
	return domain.GeoPoint{Lat: sumLat / n, Lon: sumLon / n}
}

// MaxDistanceKm - наибольшее расстояние от center до точек, без округления.
func MaxDistanceKm(center domain.GeoPoint, points []domain.GeoPoint) float64 {
	maxKm := 0.0
	for _, p := range points {
		if d := utils.HaversineDistance(center.Lat, center.Lon, p.Lat, p.Lon); d > maxKm {
			maxKm = d
		}
	}
	return maxKm
}

func asSequence(polygon any) ([]any, error) {
	switch v := polygon.(type) {
	case nil:
		return nil, polygonError("polygon is null")
	case []any:
		if len(v) == 0 {
			return nil, polygonError("polygon is empty")
		}
		return v, nil
	case json.RawMessage:
		return decodeSequence(v)
	case []byte:
		return decodeSequence(v)
	}

	rv := reflect.ValueOf(polygon)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, polygonError(fmt.Sprintf("polygon must be a sequence, got %T", polygon))
	}
	if rv.Len() == 0 {
		return nil, polygonError("polygon is empty")
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func decodeSequence(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, polygonError(fmt.Sprintf("malformed json: %v", err))
	}
	return asSequence(v)
}
