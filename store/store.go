package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultNamespace is used when no namespace is specified.
const DefaultNamespace = "default"

// AllNamespaces can be passed to List to retrieve keys in every namespace.
const AllNamespaces = "*"

// Store defines the operations data stores must implement to store and retrieve
// data.
type Store interface {
	Get(ctx context.Context, namespace, key string) (ok bool, value []byte, err error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	List(ctx context.Context, namespace, prefix string) (map[string][]string, error)
	Close() error
}

// ErrInvalidNamespace is returned for namespaces a store can't address.
var ErrInvalidNamespace = errors.New("invalid namespace")

// ValidateNamespace checks that namespace can be used for reading or writing
// a single key. The wildcard namespace is only accepted if allowWildcard is
// true.
func ValidateNamespace(namespace string, allowWildcard bool) error {
	switch {
	case namespace == "":
		return fmt.Errorf("%w: namespace is empty", ErrInvalidNamespace)
	case namespace == AllNamespaces:
		if !allowWildcard {
			return fmt.Errorf("%w: namespace '*' is not supported for this operation",
				ErrInvalidNamespace)
		}
	case strings.ContainsAny(namespace, ":*"):
		return fmt.Errorf("%w: '%s' must not contain ':' or '*'",
			ErrInvalidNamespace, namespace)
	}

	return nil
}

// ValidateKey checks that key is not empty.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("key is empty")
	}
	return nil
}

// SplitKey splits a stored key in the form namespace:key into its parts.
func SplitKey(stored string) (namespace, key string, ok bool) {
	return strings.Cut(stored, ":")
}

// JoinKey returns the stored form of key in namespace.
func JoinKey(namespace, key string) string {
	return namespace + ":" + key
}

// KeyNotFoundError is returned when a key doesn't exist in a namespace.
type KeyNotFoundError struct {
	Namespace string
	Key       string
}

func (e KeyNotFoundError) Error() string {
	return fmt.Sprintf("key '%s' doesn't exist in the '%s' namespace", e.Key, e.Namespace)
}
