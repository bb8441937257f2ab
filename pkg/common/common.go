package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a sortable unique int64 id for primary keys created in code.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a random uuid string
func UUID() string {
	return uuid.New().String()
}

// MakeSku builds a product SKU from a name prefix plus a random suffix,
// e.g. "WID-9f86d081". Used when a product is created without an explicit SKU.
func MakeSku(name string) string {
	prefix := strings.ToUpper(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, name))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if prefix == "" {
		prefix = "SKU"
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String()[:8])
}

// GetSecretSalt reads the shared secret salt, with a development fallback.
func GetSecretSalt() string {
	salt := os.Getenv("SMARTSTORE_SECRET")
	if salt == "" {
		salt = "smartstore-secret"
	}
	return salt
}

// Sha256HashWithSalt hashes src with a salt appended.
func Sha256HashWithSalt(src string, salt string) string {
	h := sha256.New()
	h.Write([]byte(src + salt))
	return hex.EncodeToString(h.Sum(nil))
}
