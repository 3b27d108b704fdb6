package models

import "time"

// Profile is a stored connection profile. SealedSecret holds the store
// secret key encrypted with the server profile secret.
type Profile struct {
	Code         string    `db:"code"`
	Endpoint     string    `db:"endpoint"`
	Region       string    `db:"region"`
	Bucket       string    `db:"bucket"`
	AccessKey    string    `db:"access_key"`
	SealedSecret []byte    `db:"secret_key"`
	Description  string    `db:"description"`
	CreatedAt    time.Time `db:"created_at"`
}
