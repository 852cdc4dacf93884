package cmdcommon

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LoadEnvConfig reads configFile into the environment, when it exists, and
// then fills spec from the variables under prefix.
func LoadEnvConfig(configFile, prefix string, spec interface{}) error {
	if configFile != "" {
		err := godotenv.Load(configFile)
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("Config file %s not found, reading from environment", configFile)
		} else if err != nil {
			return err
		}
	}

	return envconfig.Process(prefix, spec)
}
