package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/hello/store"
)

func TestRedisSetGet(t *testing.T) {
	t.Parallel()

	client, mock := redismock.NewClientMock()
	s := New(client)
	ctx := context.Background()

	mock.ExpectSet("default:my-key", []byte("OK"), 0).SetVal("OK")
	mock.ExpectGet("default:my-key").SetVal("OK")
	mock.ExpectGet("default:missing").RedisNil()
	mock.ExpectGet("default:broken").SetErr(errors.New("connection reset"))

	require.NoError(t, s.Set(ctx, store.DefaultNamespace, "my-key", []byte("OK")))

	ok, val, err := s.Get(ctx, store.DefaultNamespace, "my-key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("OK"), val)

	ok, val, err = s.Get(ctx, store.DefaultNamespace, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)

	_, _, err = s.Get(ctx, store.DefaultNamespace, "broken")
	assert.EqualError(t, err, "connection reset")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisInvalidNamespace(t *testing.T) {
	t.Parallel()

	client, mock := redismock.NewClientMock()
	s := New(client)
	ctx := context.Background()

	err := s.Set(ctx, "a:b", "key", []byte("x"))
	assert.ErrorIs(t, err, store.ErrInvalidNamespace)

	err = s.Delete(ctx, "*", "key")
	assert.ErrorIs(t, err, store.ErrInvalidNamespace)

	// Nothing should have reached the server.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisList(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		namespace string
		prefix    string
		setup     func(mock redismock.ClientMock)
		expected  map[string][]string
		expErr    string
	}{
		{
			name: "namespace", namespace: "default",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectScan(0, "default:*", scanCount).
					SetVal([]string{"default:key2"}, 7)
				mock.ExpectScan(7, "default:*", scanCount).
					SetVal([]string{"default:key"}, 0)
			},
			expected: map[string][]string{"default": {"key", "key2"}},
		},
		{
			name: "all_prefix", namespace: "*", prefix: "myapp",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectScan(0, "*", scanCount).SetVal([]string{
					"default:key", "dev:myapp/key", "unrelated",
				}, 0)
			},
			expected: map[string][]string{"dev": {"myapp/key"}},
		},
		{
			name: "escaped_prefix", namespace: "dev", prefix: "a*[b]",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectScan(0, `dev:a\*\[b\]*`, scanCount).
					SetVal([]string{"dev:a*[b]c"}, 0)
			},
			expected: map[string][]string{"dev": {"a*[b]c"}},
		},
		{
			name: "duplicate_across_batches", namespace: "default",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectScan(0, "default:*", scanCount).
					SetVal([]string{"default:key"}, 7)
				mock.ExpectScan(7, "default:*", scanCount).
					SetVal([]string{"default:key", "default:key2"}, 0)
			},
			expected: map[string][]string{"default": {"key", "key2"}},
		},
		{
			name: "scan_error", namespace: "default",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectScan(0, "default:*", scanCount).
					SetErr(errors.New("timeout"))
			},
			expErr: "failed scanning keys: timeout",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client, mock := redismock.NewClientMock()
			tc.setup(mock)

			keys, err := New(client).List(context.Background(), tc.namespace, tc.prefix)
			if tc.expErr != "" {
				require.EqualError(t, err, tc.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, keys)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisDelete(t *testing.T) {
	t.Parallel()

	client, mock := redismock.NewClientMock()
	mock.ExpectDel("dev:myapp/key").SetVal(1)

	require.NoError(t, New(client).Delete(context.Background(), "dev", "myapp/key"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
