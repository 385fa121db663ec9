package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edvin/clustertemplates/internal/model"
)

func TestBuildParams_Example(t *testing.T) {
	req := &model.ClusterRequest{
		MinNodes:     2,
		MaxNodes:     4,
		InstanceType: "m5.large",
		Edition:      model.EditionProfessional,
		Resources: []model.Resource{
			{Type: "efs", ID: "fs-1", Mountpoint: "/mnt", Sg: "sg-1"},
			{Type: "ebs", ID: "v-1"},
		},
	}

	params := BuildParams(req)

	assert.Equal(t, `{"fs-1":"/mnt"}`, params.EFS)
	assert.Equal(t, []string{"sg-1"}, params.AdditionalSGs)
	assert.Equal(t, []model.Resource{{Type: "ebs", ID: "v-1"}}, params.Resources)
	assert.Equal(t, 2, params.MinNodes)
	assert.Equal(t, 4, params.MaxNodes)
	assert.Equal(t, "m5.large", params.InstanceType)
	assert.Equal(t, model.EditionProfessional, params.Edition)
}

func TestBuildParams_NoEFS(t *testing.T) {
	req := &model.ClusterRequest{
		Resources: []model.Resource{
			{Type: "rds", ID: "db-1"},
			{Type: "elasticache", ID: "cache-1"},
		},
	}

	params := BuildParams(req)

	assert.Equal(t, "", params.EFS)
	assert.Empty(t, params.AdditionalSGs)
	assert.Equal(t, req.Resources, params.Resources)
}

func TestBuildParams_DuplicateEFSLastWins(t *testing.T) {
	req := &model.ClusterRequest{
		Resources: []model.Resource{
			{Type: "efs", ID: "fs-1", Mountpoint: "/a", Sg: "sg-2"},
			{Type: "efs", ID: "fs-2", Mountpoint: "/b", Sg: "sg-1"},
			{Type: "efs", ID: "fs-1", Mountpoint: "/c", Sg: "sg-2"},
			{Type: "efs", ID: "fs-3", Mountpoint: "/d", Sg: "sg-3"},
		},
	}

	params := BuildParams(req)

	assert.Equal(t, `{"fs-1":"/c","fs-2":"/b","fs-3":"/d"}`, params.EFS)
	assert.Equal(t, []string{"sg-2", "sg-1", "sg-3"}, params.AdditionalSGs)
	assert.Empty(t, params.Resources)
}

func TestBuildParams_PartitionIsExclusive(t *testing.T) {
	req := &model.ClusterRequest{
		Resources: []model.Resource{
			{Type: "ebs", ID: "v-1"},
			{Type: "efs", ID: "fs-1", Mountpoint: "/mnt", Sg: "sg-1"},
			{Type: "s3", ID: "bucket-1"},
		},
	}

	params := BuildParams(req)

	for _, res := range params.Resources {
		assert.NotEqual(t, "efs", res.Type)
	}
	assert.NotContains(t, params.EFS, "v-1")
	assert.NotContains(t, params.EFS, "bucket-1")
	assert.Equal(t, []model.Resource{{Type: "ebs", ID: "v-1"}, {Type: "s3", ID: "bucket-1"}}, params.Resources)
}
