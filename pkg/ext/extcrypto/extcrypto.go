// Package extcrypto provides hashing and identifier functions for remap.
//
// Security note: MD5 and SHA-1 are provided for compatibility/fingerprinting only
// and should NOT be used for cryptographic security purposes.
package extcrypto

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // intentional: provided for non-security fingerprinting
	"crypto/sha1" //nolint:gosec // intentional
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/google/uuid"

	"github.com/sandrolain/goremap/pkg/ext/extutil"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
	"github.com/sandrolain/goremap/pkg/value"
)

// Algorithms lists the names accepted by hash and hmac.
var Algorithms = []string{"md5", "sha1", "sha256", "sha384", "sha512"}

var hashers = map[string]func() hash.Hash{
	"md5":    md5.New, //nolint:gosec
	"sha1":   sha1.New, //nolint:gosec
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// All returns all extended cryptographic function definitions.
func All() []functions.Function {
	return []functions.Function{
		UUID(),
		IsUUID(),
		Hash(),
		HMAC(),
	}
}

// UUID returns the definition for uuid(): a random version 4 UUID.
func UUID() *functions.Def {
	return &functions.Def{
		Name:      "uuid",
		Signature: "<:s>",
		Keywords:  []string{},
		Impl: func(_ *runtime.Context, _ *functions.Arguments) (value.Value, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return nil, types.Errorf(types.ErrFunction, "unable to generate uuid: %v", err).WithCause(err)
			}
			return value.String(id.String()), nil
		},
	}
}

// IsUUID returns the definition for is_uuid(value).
func IsUUID() *functions.Def {
	return &functions.Def{
		Name:      "is_uuid",
		Signature: "<s:b>",
		Keywords:  []string{"value"},
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			_, err = uuid.Parse(s)
			return value.Boolean(err == nil), nil
		},
	}
}

// Hash returns the definition for hash(value, algorithm).
// Returns a lowercase hex-encoded digest. A literal algorithm is checked
// when the program is compiled.
func Hash() *functions.Def {
	return &functions.Def{
		Name:        "hash",
		Signature:   "<s-s:s>",
		Keywords:    []string{"value", "algorithm"},
		ResolveFunc: extutil.OneOf("algorithm", Algorithms, types.String()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			newHash, err := hasher(args)
			if err != nil {
				return nil, err
			}
			h := newHash()
			h.Write([]byte(s))
			return value.String(hex.EncodeToString(h.Sum(nil))), nil
		},
	}
}

// HMAC returns the definition for hmac(value, key, algorithm).
// Returns a lowercase hex-encoded HMAC.
func HMAC() *functions.Def {
	return &functions.Def{
		Name:        "hmac",
		Signature:   "<s-s-s:s>",
		Keywords:    []string{"value", "key", "algorithm"},
		ResolveFunc: extutil.OneOf("algorithm", Algorithms, types.String()),
		Impl: func(_ *runtime.Context, args *functions.Arguments) (value.Value, error) {
			s, err := args.String("value")
			if err != nil {
				return nil, err
			}
			key, err := args.String("key")
			if err != nil {
				return nil, err
			}
			newHash, err := hasher(args)
			if err != nil {
				return nil, err
			}
			mac := hmac.New(newHash, []byte(key))
			mac.Write([]byte(s))
			return value.String(hex.EncodeToString(mac.Sum(nil))), nil
		},
	}
}

func hasher(args *functions.Arguments) (func() hash.Hash, error) {
	algorithm, err := args.String("algorithm")
	if err != nil {
		return nil, err
	}
	if err := extutil.CheckOneOf("algorithm", algorithm, Algorithms); err != nil {
		return nil, err
	}
	return hashers[strings.ToLower(algorithm)], nil
}
