package util

import (
	"os"
	"strings"
)

const EnvironmentPrefix = "PAXSTATS_"

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 {
			continue
		}

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// GetEnvironmentVariable returns the PAXSTATS_ prefixed variable or the fallback when unset or empty
func GetEnvironmentVariable(env map[string]string, name string, fallback string) string {
	if value := env[EnvironmentPrefix+name]; value != "" {
		return value
	}

	return fallback
}
