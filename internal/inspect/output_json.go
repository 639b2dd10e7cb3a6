package inspect

import "encoding/json"

// RenderJSON renders reports as an indented JSON document: a single object
// for one report, an array otherwise.
func RenderJSON(reports []Report) (string, error) {
	var v interface{} = reports
	if len(reports) == 1 {
		v = reports[0]
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
