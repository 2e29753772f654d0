package services

import "time"

// Config file de notifications et rappels
type Config struct {
	Stream           string
	Group            string
	Collection       string
	ReminderInterval time.Duration
	ReminderEnabled  bool
}
