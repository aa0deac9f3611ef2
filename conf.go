package atom

import (
	"os"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func Yaml(filePath string, out interface{}) (err error) {
	conf, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(conf, out)
}

func Json(filePath string, out interface{}) (err error) {
	conf, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(conf, out)
}

// JsonUnmarshal decodes data with the configuration Json uses.
func JsonUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

// JsonMarshal encodes v with the same configuration Json decodes with.
func JsonMarshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
