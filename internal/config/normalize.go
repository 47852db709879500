package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(strings.TrimSpace(c.Paths.LibraryDir)); err != nil {
		return err
	}
	if c.Paths.RecoveryDir, err = expandPath(strings.TrimSpace(c.Paths.RecoveryDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}

	c.Exiftool.Binary = strings.TrimSpace(c.Exiftool.Binary)
	if c.Exiftool.Binary == "" {
		c.Exiftool.Binary = "exiftool"
	}
	if c.Exiftool.ProbeTimeout <= 0 {
		c.Exiftool.ProbeTimeout = 10
	}
	if c.Exiftool.WriteTimeout <= 0 {
		c.Exiftool.WriteTimeout = 30
	}

	if c.Apply.CheckpointInterval <= 0 {
		c.Apply.CheckpointInterval = 100
	}
	c.Apply.ConfidenceFloor = strings.ToUpper(strings.TrimSpace(c.Apply.ConfidenceFloor))
	if c.Apply.ConfidenceFloor == "" {
		c.Apply.ConfidenceFloor = "HIGH"
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	translations := c.PathMap[:0]
	for _, tr := range c.PathMap {
		tr.From = strings.TrimSpace(tr.From)
		tr.To = strings.TrimSpace(tr.To)
		if tr.From == "" || tr.To == "" {
			continue
		}
		translations = append(translations, tr)
	}
	c.PathMap = translations

	return nil
}
