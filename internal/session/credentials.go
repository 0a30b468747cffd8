// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credentials is the single portal login. The password is kept only as a
// bcrypt hash.
type Credentials struct {
	username string
	hash     []byte
}

// NewCredentials hashes password for later comparison.
func NewCredentials(username, password string) (*Credentials, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &Credentials{username: username, hash: hash}, nil
}

// Check reports whether username and password match. The password hash is
// compared even when the username is wrong.
func (c *Credentials) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
	return userOK && passOK
}

// Username returns the configured login name.
func (c *Credentials) Username() string {
	return c.username
}
