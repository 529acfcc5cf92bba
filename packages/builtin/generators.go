package builtin

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a built-in generator. The set is closed: textual names
// that do not match any generator map to KindUnrecognized rather than
// falling through silently.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindUUID
	KindTimestamp
	KindUnix
	KindRandomInt
	KindRandomString
	KindRandomEmail
	KindDate
	KindTime
)

const (
	randomIntMax       = 1000000
	randomStringLength = 16
)

var kindNames = map[string]Kind{
	"uuid":         KindUUID,
	"timestamp":    KindTimestamp,
	"unix":         KindUnix,
	"randomInt":    KindRandomInt,
	"randomString": KindRandomString,
	"randomEmail":  KindRandomEmail,
	"date":         KindDate,
	"time":         KindTime,
}

// Lookup maps a generator name (without the leading $) to its Kind.
// Unknown names return KindUnrecognized and false.
func Lookup(name string) (Kind, bool) {
	if k, ok := kindNames[name]; ok {
		return k, true
	}
	return KindUnrecognized, false
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unrecognized"
}

// Generate produces a fresh value for the generator. KindUnrecognized
// yields the empty string; callers are expected to have checked Lookup.
func (k Kind) Generate() string {
	switch k {
	case KindUUID:
		return uuid.New().String()
	case KindTimestamp:
		return time.Now().UTC().Format(time.RFC3339)
	case KindUnix:
		return strconv.FormatInt(time.Now().Unix(), 10)
	case KindRandomInt:
		return strconv.Itoa(rand.Intn(randomIntMax))
	case KindRandomString:
		return randomString(randomStringLength, alphanumeric)
	case KindRandomEmail:
		user := randomString(8, lowercase)
		domain := randomString(6, lowercase)
		return fmt.Sprintf("%s@%s.com", user, domain)
	case KindDate:
		return time.Now().UTC().Format("2006-01-02")
	case KindTime:
		return time.Now().UTC().Format("15:04:05")
	default:
		return ""
	}
}

const (
	lowercase    = "abcdefghijklmnopqrstuvwxyz"
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func randomString(length int, charset string) string {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
