package utils

import (
	"os"
	"strconv"
)

// CreateFolder creates the entire path (wrapping os.MkdirAll) checking if it
// exists first. If the path exists it does not return an error.
func CreateFolder(path string) error {
	exists, err := PathExists(path)
	if err != nil {
		return err
	}

	if !exists {
		if err := os.MkdirAll(path, os.ModeDir|os.ModePerm); err != nil {
			return err
		}
	}

	return nil
}

// PathExists returns whether the given file or directory exists or not
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return true, err
}

// EnvDefault returns the environment variable key or def when it is unset
func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt parses the environment variable key as an int, falling back to def
// when it is unset or malformed.
func EnvInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}
