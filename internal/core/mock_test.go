package core

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/clustertemplates/internal/model"
)

// ---------- Mock ArtifactStore ----------

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, key string, body []byte) (*model.Artifact, error) {
	args := m.Called(ctx, key, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

// sequentialKeys returns a key generator yielding keys in order.
func sequentialKeys(keys ...string) func() string {
	i := 0
	return func() string {
		k := keys[i%len(keys)]
		i++
		return k
	}
}
