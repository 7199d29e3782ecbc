package repository

import "encoding/json"

// errorsToJSON/errorsFromJSON сериализуют список ошибок скана в JSON-колонку.
// encoding/json используется намеренно: это не один из двух "горячих путей"
// (файлы коллекций, WS-поток возможностей), где принят jsoniter.

func errorsToJSON(errs []string) []byte {
	if len(errs) == 0 {
		return nil
	}
	b, _ := json.Marshal(errs)
	return b
}

func errorsFromJSON(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	var errs []string
	if err := json.Unmarshal(b, &errs); err != nil {
		return nil
	}
	return errs
}
