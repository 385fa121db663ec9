package request

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/edvin/clustertemplates/internal/model"
)

const (
	MsgMissingFields   = "Please enter all fields."
	MsgNodesNotNumeric = "Please insert numbers into the nodes fields."
	MsgMaxBelowMin     = "Number of maximum nodes must be greater or equal to minimum nodes."
	MsgTooFewNodes     = "Number of nodes must be greater or equal to 2."
	MsgUnknownEdition  = "Unknown Zend Server edition selected."
	MsgBadResources    = "Failed parsing resources."
)

const minClusterNodes = 2

var editionRule = func() string {
	names := make([]string, len(model.Editions))
	for i, e := range model.Editions {
		names[i] = string(e)
	}
	return "oneof=" + strings.Join(names, " ")
}()

// ClusterForm is a raw cluster sizing submission, before validation.
type ClusterForm struct {
	Generate     bool
	MinNodes     string
	MaxNodes     string
	InstanceType string
	OSType       string
	Edition      string
	Resources    string
	WithSSL      bool
	VPC          bool
	ZendDBType   string
	PHPVersion   string
}

// CreateTemplate is the JSON body accepted by the template API.
type CreateTemplate struct {
	MinNodes     NodeCount       `json:"minNodes"`
	MaxNodes     NodeCount       `json:"maxNodes"`
	InstanceType string          `json:"instanceType"`
	OSType       string          `json:"osType"`
	Edition      string          `json:"edition"`
	Resources    json.RawMessage `json:"resources"`
	WithSSL      bool            `json:"withSsl"`
	VPC          bool            `json:"vpc"`
	ZendDBType   string          `json:"zendDbType"`
	PHPVersion   string          `json:"phpVersion"`
}

// NodeCount is a node count as sent by API clients: a JSON number or a
// string. It is kept as text so Validate reports non-numeric input the
// same way as on the form.
type NodeCount string

func (n *NodeCount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = NodeCount(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		// Objects, arrays and booleans are kept verbatim and fail as non-numeric.
		*n = NodeCount(b)
		return nil
	}
	*n = NodeCount(num)
	return nil
}

// Form converts the JSON body into the form representation so both entry
// points share one set of rules.
func (c CreateTemplate) Form() ClusterForm {
	resources := strings.TrimSpace(string(c.Resources))
	// Accept the resource list either inline or as a JSON-encoded string.
	if strings.HasPrefix(resources, `"`) {
		var s string
		if err := json.Unmarshal(c.Resources, &s); err == nil {
			resources = s
		}
	}
	return ClusterForm{
		Generate:     true,
		MinNodes:     string(c.MinNodes),
		MaxNodes:     string(c.MaxNodes),
		InstanceType: c.InstanceType,
		OSType:       c.OSType,
		Edition:      c.Edition,
		Resources:    resources,
		WithSSL:      c.WithSSL,
		VPC:          c.VPC,
		ZendDBType:   c.ZendDBType,
		PHPVersion:   c.PHPVersion,
	}
}

// ParseClusterForm reads the cluster form fields from submitted values.
func ParseClusterForm(v url.Values) ClusterForm {
	return ClusterForm{
		Generate:     truthy(v.Get("generate")),
		MinNodes:     v.Get("minNodes"),
		MaxNodes:     v.Get("maxNodes"),
		InstanceType: v.Get("instanceType"),
		OSType:       v.Get("osType"),
		Edition:      v.Get("edition"),
		Resources:    v.Get("resources"),
		WithSSL:      truthy(v.Get("withSsl")),
		VPC:          truthy(v.Get("vpc")),
		ZendDBType:   v.Get("zendDbType"),
		PHPVersion:   v.Get("phpVersion"),
	}
}

// Validate runs every rule and returns either the request or the full,
// ordered list of failures. It never stops at the first failure.
func (f ClusterForm) Validate() (*model.ClusterRequest, ValidationErrors) {
	var errs ValidationErrors

	if strings.TrimSpace(f.MinNodes) == "" || strings.TrimSpace(f.MaxNodes) == "" || strings.TrimSpace(f.InstanceType) == "" {
		errs = append(errs, FieldError{Field: "nodes", Rule: "required", Message: MsgMissingFields})
	}

	minNodes, minErr := strconv.Atoi(strings.TrimSpace(f.MinNodes))
	maxNodes, maxErr := strconv.Atoi(strings.TrimSpace(f.MaxNodes))
	if minErr != nil || maxErr != nil {
		errs = append(errs, FieldError{Field: "nodes", Rule: "numeric", Message: MsgNodesNotNumeric})
	}

	if minErr == nil && maxErr == nil && minNodes > maxNodes {
		errs = append(errs, FieldError{Field: "maxNodes", Rule: "gtefield", Message: MsgMaxBelowMin})
	}

	if minErr == nil && minNodes < minClusterNodes {
		errs = append(errs, FieldError{Field: "minNodes", Rule: "min", Message: MsgTooFewNodes})
	}

	if err := validate.Var(f.Edition, editionRule); err != nil {
		errs = append(errs, FieldError{Field: "edition", Rule: "oneof", Message: MsgUnknownEdition})
	}

	resources, err := parseResources(f.Resources)
	if err != nil {
		errs = append(errs, FieldError{Field: "resources", Rule: "json", Message: MsgBadResources, Detail: err.Error()})
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &model.ClusterRequest{
		MinNodes:     minNodes,
		MaxNodes:     maxNodes,
		InstanceType: f.InstanceType,
		OSType:       f.OSType,
		Edition:      model.Edition(f.Edition),
		Resources:    resources,
		WithSSL:      f.WithSSL,
		VPC:          f.VPC,
		ZendDBType:   f.ZendDBType,
		PHPVersion:   f.PHPVersion,
	}, nil
}

// parseResources decodes the JSON resource list and checks each entry
// against the efs / non-efs shape. A missing list is an error, an empty
// array is not.
func parseResources(raw string) ([]model.Resource, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode resource list: %w", err)
	}
	if entries == nil {
		return nil, fmt.Errorf("resource list is null")
	}

	resources := make([]model.Resource, 0, len(entries))
	for i, entry := range entries {
		var res model.Resource
		if err := json.Unmarshal(entry, &res); err != nil {
			return nil, fmt.Errorf("resource %d: %w", i, err)
		}
		if err := validate.Struct(res); err != nil {
			return nil, fmt.Errorf("resource %d: %s", i, describe(err))
		}
		resources = append(resources, res)
	}
	return resources, nil
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}
