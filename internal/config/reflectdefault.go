package config

import (
	"reflect"
	"strconv"
)

// applyDefaults fills every zero-valued field of obj (a pointer to
// struct) from its `default:"..."` tag, generalized from the teacher's
// helpers.go setDefaultValues. LoadFileDefaults calls it on a fresh
// FileDefaults before reading the INI keys, so every key the file
// omits keeps its tagged default.
func applyDefaults(obj interface{}) {
	tof := reflect.TypeOf(obj).Elem()
	vof := reflect.ValueOf(obj).Elem()

	for i := 0; i < vof.NumField(); i++ {
		vf := vof.Field(i)
		v := tof.Field(i).Tag.Get("default")

		if v == "" || !vf.IsZero() {
			continue
		}

		switch vf.Kind() {
		case reflect.String:
			vf.SetString(v)
		case reflect.Int:
			if intv, err := strconv.ParseInt(v, 10, 64); err == nil {
				vf.SetInt(intv)
			}
		case reflect.Bool:
			if b, err := strconv.ParseBool(v); err == nil {
				vf.SetBool(b)
			}
		}
	}
}
