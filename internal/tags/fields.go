package tags

import "strconv"

// Dimensions extracts pixel width and height from a metadata record.
// Either value may be 0 when absent.
func Dimensions(record map[string]any) (width, height int64) {
	width = firstInt(record, "ImageWidth", "EXIF:ImageWidth", "XMP:ImageWidth", "File:ImageWidth")
	height = firstInt(record, "ImageHeight", "EXIF:ImageHeight", "XMP:ImageHeight", "File:ImageHeight")
	return width, height
}

// GPS extracts decimal latitude and longitude from a metadata record.
// ok is false when either coordinate is absent.
func GPS(record map[string]any) (lat, lon float64, ok bool) {
	lat, latOK := firstFloat(record, "GPSLatitude", "Composite:GPSLatitude", "XMP:GPSLatitude")
	lon, lonOK := firstFloat(record, "GPSLongitude", "Composite:GPSLongitude", "XMP:GPSLongitude")
	return lat, lon, latOK && lonOK
}

// MakeModel extracts the camera make and model strings.
func MakeModel(record map[string]any) (make, model string) {
	if v := getAny(record, "Make"); v != nil {
		if s, ok := v.(string); ok {
			make = Normalize(s)
		}
	}
	if v := getAny(record, "Model"); v != nil {
		if s, ok := v.(string); ok {
			model = Normalize(s)
		}
	}
	return make, model
}

func firstInt(record map[string]any, keys ...string) int64 {
	for _, key := range keys {
		switch v := getAny(record, key).(type) {
		case float64:
			return int64(v)
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return int64(f)
			}
		}
	}
	return 0
}

func firstFloat(record map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := getAny(record, key).(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
