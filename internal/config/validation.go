package config

import "fmt"

func validate(c *Config) error {
	if c.NavTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be > 0")
	}
	if c.MaxItems <= 0 {
		return fmt.Errorf("max items must be > 0")
	}
	if c.MaxOptions <= 0 {
		return fmt.Errorf("max options must be > 0")
	}
	if c.Workers <= 0 || c.Workers > DefaultMaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d", DefaultMaxWorkers)
	}
	if c.ScrollRounds <= 0 {
		return fmt.Errorf("scroll rounds must be > 0")
	}
	return nil
}
