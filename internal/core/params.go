package core

import (
	"github.com/edvin/clustertemplates/internal/model"
)

// BuildParams derives the template parameters from a validated request.
// Efs resources are folded into the mount mapping and the additional
// security group list; every other resource is passed through in order.
func BuildParams(req *model.ClusterRequest) model.TemplateParams {
	var (
		efs           model.EFSMapping
		additionalSGs = []string{}
		others        = []model.Resource{}
		seenSG        = make(map[string]bool)
	)

	for _, res := range req.Resources {
		if !res.IsEFS() {
			others = append(others, res)
			continue
		}
		efs.Set(res.ID, res.Mountpoint)
		if !seenSG[res.Sg] {
			seenSG[res.Sg] = true
			additionalSGs = append(additionalSGs, res.Sg)
		}
	}

	return model.TemplateParams{
		MinNodes:      req.MinNodes,
		MaxNodes:      req.MaxNodes,
		InstanceType:  req.InstanceType,
		Edition:       req.Edition,
		OSType:        req.OSType,
		ZendDBType:    req.ZendDBType,
		PHPVersion:    req.PHPVersion,
		WithSSL:       req.WithSSL,
		Resources:     others,
		EFS:           efs.String(),
		AdditionalSGs: additionalSGs,
	}
}
