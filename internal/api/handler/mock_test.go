package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/clustertemplates/internal/model"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req *model.ClusterRequest) (*model.Artifact, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) Update(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var lines []string
	if v := args.Get(0); v != nil {
		lines = v.([]string)
	}
	return lines, args.Error(1)
}
