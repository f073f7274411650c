//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"fmt"
	"regexp"
)

// CodeCharset is the alphabet of client and remister codes.
const CodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Code lengths.
const (
	ClientCodeLength   = 7
	RemisterCodeLength = 4
)

var (
	clientCodePattern   = regexp.MustCompile(`^[A-Z0-9]{7}$`)
	remisterCodePattern = regexp.MustCompile(`^[A-Z0-9]{4}$`)
	cdsNoPattern        = regexp.MustCompile(`^[1-9]\d{2}-[1-9]\d{2}-[1-9]\d{8}$`)
)

// ClientCode generates a 7-character account client code.
func (f *Faker) ClientCode() string {
	return f.RandomString(ClientCodeLength, CodeCharset)
}

// RemisterCode generates a 4-character remister code.
func (f *Faker) RemisterCode() string {
	return f.RandomString(RemisterCodeLength, CodeCharset)
}

// CDSNo generates a CDS number of the form DDD-DDD-DDDDDDDDD where each
// group has no leading zero.
func (f *Faker) CDSNo() string {
	return fmt.Sprintf("%d-%d-%d",
		f.Int(100, 999),
		f.Int(100, 999),
		f.Int(100000000, 999999999))
}

// ValidClientCode reports whether s is a well-formed client code.
func ValidClientCode(s string) bool {
	return clientCodePattern.MatchString(s)
}

// ValidRemisterCode reports whether s is a well-formed remister code.
func ValidRemisterCode(s string) bool {
	return remisterCodePattern.MatchString(s)
}

// ValidCDSNo reports whether s is a well-formed CDS number.
func ValidCDSNo(s string) bool {
	return cdsNoPattern.MatchString(s)
}
