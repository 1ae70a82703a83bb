package georadius

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/pkg/utils"
)

var (
	latitudeKeys  = []string{"latitude", "lat"}
	longitudeKeys = []string{"longitude", "lon", "lng"}
)

// resolvePoint приводит одну сырую вершину к GeoPoint.
//
// Пары без явных меток разбираются по order. В режиме AxisOrderAuto пара
// считается [lat, lon], если |a| <= 90 и |b| <= 180, иначе [lon, lat].
// Точки у экватора/нулевого меридиана, где обе компоненты по модулю <= 90,
// по соглашению читаются как [lat, lon]: истинный порядок по величинам
// восстановить нельзя.
func resolvePoint(raw any, order domain.AxisOrder) (domain.GeoPoint, error) {
	var p domain.GeoPoint

	switch v := raw.(type) {
	case nil:
		return p, errors.New("point is null")
	case domain.GeoPoint:
		p = v
	case map[string]any:
		lat, ok := lookupNumber(v, latitudeKeys)
		if !ok {
			return p, errors.New("missing or non-numeric latitude")
		}
		lon, ok := lookupNumber(v, longitudeKeys)
		if !ok {
			return p, errors.New("missing or non-numeric longitude")
		}
		p = domain.GeoPoint{Lat: lat, Lon: lon}
	default:
		rv := reflect.ValueOf(raw)
		if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			// map[string]int, map[string]json.Number и т.п.
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
			return resolvePoint(m, order)
		}
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return p, errors.New("unsupported point shape")
		}
		if rv.Len() < 2 {
			return p, errors.New("coordinate pair needs at least 2 elements")
		}
		a, okA := toFloat(rv.Index(0).Interface())
		b, okB := toFloat(rv.Index(1).Interface())
		if !okA || !okB {
			return p, errors.New("coordinate pair is not numeric")
		}
		p = orderPair(a, b, order)
	}

	if !utils.IsFinite(p.Lat) || !utils.IsFinite(p.Lon) {
		return p, errors.New("coordinate is not finite")
	}
	if math.Abs(p.Lat) > 90 {
		return p, errors.New("latitude out of range")
	}
	p.Lon = wrapLongitude(p.Lon)
	if !utils.ValidateCoordinates(p.Lat, p.Lon) {
		return p, errors.New("coordinate out of range")
	}
	return p, nil
}

// wrapLongitude переносит долготу вне [-180, 180] в [-180, 180) по модулю 360.
// Значения внутри диапазона, включая 180, не трогаются.
func wrapLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func orderPair(a, b float64, order domain.AxisOrder) domain.GeoPoint {
	switch order {
	case domain.AxisOrderLatLon:
		return domain.GeoPoint{Lat: a, Lon: b}
	case domain.AxisOrderLonLat:
		return domain.GeoPoint{Lat: b, Lon: a}
	}
	if math.Abs(a) <= 90 && math.Abs(b) <= 180 {
		return domain.GeoPoint{Lat: a, Lon: b}
	}
	return domain.GeoPoint{Lat: b, Lon: a}
}

func lookupNumber(m map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return toFloat(v)
		}
	}
	return 0, false
}

// toFloat принимает числа любых типов, json.Number и числовые строки.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return 0, false
		}
	}
	return f, utils.IsFinite(f)
}
