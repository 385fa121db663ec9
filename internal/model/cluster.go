package model

// Edition selects the Zend Server tier deployed on the cluster.
type Edition string

const (
	EditionProfessional   Edition = "pro"
	EditionEnterprise     Edition = "ent"
	EditionEnterprisePlus Edition = "entplus"
)

// Editions lists every accepted edition in display order.
var Editions = []Edition{EditionProfessional, EditionEnterprise, EditionEnterprisePlus}

// ClusterRequest is a validated cluster sizing request. It lives for a single
// HTTP request and is never persisted.
type ClusterRequest struct {
	MinNodes     int        `json:"minNodes"`
	MaxNodes     int        `json:"maxNodes"`
	InstanceType string     `json:"instanceType"`
	OSType       string     `json:"osType"`
	Edition      Edition    `json:"edition"`
	Resources    []Resource `json:"resources"`
	WithSSL      bool       `json:"withSsl"`
	VPC          bool       `json:"vpc"`
	ZendDBType   string     `json:"zendDbType"`
	PHPVersion   string     `json:"phpVersion"`
}

// TemplateParams is the data handed to the deployment template.
type TemplateParams struct {
	MinNodes     int
	MaxNodes     int
	InstanceType string
	Edition      Edition
	OSType       string
	ZendDBType   string
	PHPVersion   string
	WithSSL      bool
	// Resources holds every non-efs resource in submission order.
	Resources []Resource
	// EFS is the serialized efs mapping, or "" when there is none.
	EFS           string
	AdditionalSGs []string
}
