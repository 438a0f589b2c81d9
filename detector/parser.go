package detector

import (
	"fmt"
	"io"
	"log"

	"github.com/esimov/ascii-cam/source"
)

// ParseCascade loads a cascade file from a path or an http(s) URL and
// returns it as a byte array.
func ParseCascade(location string) ([]byte, error) {
	log.Println("loading cascade file: " + location)
	rc, err := source.Open(location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buffer, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading cascade %s: %w", location, err)
	}
	return buffer, nil
}

// Load reads and unpacks the cascade at location.
func Load(location string) (*Detector, error) {
	cascade, err := ParseCascade(location)
	if err != nil {
		return nil, err
	}
	return NewDetector(cascade)
}
