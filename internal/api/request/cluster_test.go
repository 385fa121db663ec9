package request

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/clustertemplates/internal/model"
)

func validForm() ClusterForm {
	return ClusterForm{
		Generate:     true,
		MinNodes:     "2",
		MaxNodes:     "4",
		InstanceType: "m5.large",
		OSType:       "ubuntu",
		Edition:      "pro",
		Resources:    `[{"type":"efs","Id":"fs-1","Mountpoint":"/mnt","Sg":"sg-1"},{"type":"ebs","Id":"v-1"}]`,
		ZendDBType:   "rds",
		PHPVersion:   "7.4",
	}
}

func TestValidate_ValidForm(t *testing.T) {
	req, errs := validForm().Validate()
	require.Empty(t, errs)
	require.NotNil(t, req)

	assert.Equal(t, 2, req.MinNodes)
	assert.Equal(t, 4, req.MaxNodes)
	assert.Equal(t, "m5.large", req.InstanceType)
	assert.Equal(t, model.EditionProfessional, req.Edition)
	assert.Equal(t, []model.Resource{
		{Type: "efs", ID: "fs-1", Mountpoint: "/mnt", Sg: "sg-1"},
		{Type: "ebs", ID: "v-1"},
	}, req.Resources)
}

func TestValidate_EmptyResourceList(t *testing.T) {
	f := validForm()
	f.Resources = "[]"

	req, errs := f.Validate()
	require.Empty(t, errs)
	assert.Empty(t, req.Resources)
}

func TestValidate_AllErrorsAccumulateInOrder(t *testing.T) {
	f := ClusterForm{
		Generate:  true,
		MinNodes:  "5",
		MaxNodes:  "x",
		Edition:   "community",
		Resources: "{",
	}

	req, errs := f.Validate()
	assert.Nil(t, req)
	assert.Equal(t, []string{
		MsgMissingFields,
		MsgNodesNotNumeric,
		MsgUnknownEdition,
		MsgBadResources,
	}, errs.Messages())
}

func TestValidate_EveryRuleFails(t *testing.T) {
	f := validForm()
	f.MinNodes = "1"
	f.MaxNodes = "0"
	f.InstanceType = ""
	f.Edition = ""
	f.Resources = "null"

	_, errs := f.Validate()
	assert.Equal(t, []string{
		MsgMissingFields,
		MsgMaxBelowMin,
		MsgTooFewNodes,
		MsgUnknownEdition,
		MsgBadResources,
	}, errs.Messages())
}

func TestValidate_MinNodesBelowTwo(t *testing.T) {
	for _, min := range []string{"1", "0", "-3"} {
		t.Run(min, func(t *testing.T) {
			f := validForm()
			f.MinNodes = min

			_, errs := f.Validate()
			assert.Contains(t, errs.Messages(), MsgTooFewNodes)
		})
	}
}

func TestValidate_MaxBelowMin(t *testing.T) {
	f := validForm()
	f.MinNodes = "6"
	f.MaxNodes = "3"

	_, errs := f.Validate()
	assert.Equal(t, []string{MsgMaxBelowMin}, errs.Messages())
}

func TestValidate_MaxEqualsMin(t *testing.T) {
	f := validForm()
	f.MinNodes = "3"
	f.MaxNodes = "3"

	_, errs := f.Validate()
	assert.Empty(t, errs)
}

func TestValidate_NonNumericNodes(t *testing.T) {
	f := validForm()
	f.MaxNodes = "4.5"

	_, errs := f.Validate()
	assert.Equal(t, []string{MsgNodesNotNumeric}, errs.Messages())
}

func TestValidate_Editions(t *testing.T) {
	for _, edition := range []string{"pro", "ent", "entplus"} {
		t.Run(edition, func(t *testing.T) {
			f := validForm()
			f.Edition = edition
			_, errs := f.Validate()
			assert.NotContains(t, errs.Messages(), MsgUnknownEdition)
		})
	}
	for _, edition := range []string{"", "PRO", "enterprise", "pro "} {
		t.Run("invalid "+edition, func(t *testing.T) {
			f := validForm()
			f.Edition = edition
			_, errs := f.Validate()
			assert.Contains(t, errs.Messages(), MsgUnknownEdition)
		})
	}
}

func TestValidate_MalformedResources(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"not json":          "efs",
		"object":            `{"type":"efs"}`,
		"null":              "null",
		"string entry":      `["fs-1"]`,
		"missing type":      `[{"Id":"v-1"}]`,
		"missing id":        `[{"type":"ebs"}]`,
		"efs no mountpoint": `[{"type":"efs","Id":"fs-1","Sg":"sg-1"}]`,
		"efs no sg":         `[{"type":"efs","Id":"fs-1","Mountpoint":"/mnt"}]`,
		"ebs with sg":       `[{"type":"ebs","Id":"v-1","Sg":"sg-1"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			f := validForm()
			f.Resources = raw

			_, errs := f.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, "resources", errs[0].Field)
			assert.Equal(t, MsgBadResources, errs[0].Message)
			assert.NotEmpty(t, errs[0].Detail)
		})
	}
}

func TestParseClusterForm(t *testing.T) {
	v := url.Values{
		"generate":     {"1"},
		"minNodes":     {"2"},
		"maxNodes":     {"3"},
		"instanceType": {"t3.medium"},
		"osType":       {"rhel"},
		"edition":      {"ent"},
		"resources":    {"[]"},
		"withSsl":      {"on"},
		"zendDbType":   {"mysql"},
		"phpVersion":   {"8.1"},
	}

	f := ParseClusterForm(v)
	assert.True(t, f.Generate)
	assert.True(t, f.WithSSL)
	assert.False(t, f.VPC)
	assert.Equal(t, "t3.medium", f.InstanceType)
	assert.Equal(t, "ent", f.Edition)
	assert.Equal(t, "8.1", f.PHPVersion)
}

func TestTruthy(t *testing.T) {
	for _, s := range []string{"1", "on", "yes", "true", "generate"} {
		assert.True(t, truthy(s), s)
	}
	for _, s := range []string{"", "0", "false", "OFF", " "} {
		assert.False(t, truthy(s), s)
	}
}

func TestCreateTemplate_Form(t *testing.T) {
	var body CreateTemplate
	err := json.Unmarshal([]byte(`{
		"minNodes": 2,
		"maxNodes": "4",
		"instanceType": "m5.large",
		"edition": "entplus",
		"resources": [{"type":"ebs","Id":"v-1"}],
		"vpc": true
	}`), &body)
	require.NoError(t, err)

	f := body.Form()
	assert.True(t, f.Generate)
	assert.Equal(t, "2", f.MinNodes)
	assert.Equal(t, "4", f.MaxNodes)
	assert.True(t, f.VPC)

	req, errs := f.Validate()
	require.Empty(t, errs)
	assert.Equal(t, []model.Resource{{Type: "ebs", ID: "v-1"}}, req.Resources)
}

func TestCreateTemplate_FormWithEncodedResources(t *testing.T) {
	body := CreateTemplate{Resources: json.RawMessage(`"[{\"type\":\"ebs\",\"Id\":\"v-1\"}]"`)}
	assert.Equal(t, `[{"type":"ebs","Id":"v-1"}]`, body.Form().Resources)
}

func TestNodeCount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want NodeCount
	}{
		{`3`, "3"},
		{`"3"`, "3"},
		{`"abc"`, "abc"},
		{`4.5`, "4.5"},
		{`null`, ""},
		{`true`, "true"},
		{`[2]`, "[2]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n NodeCount
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestCreateTemplate_NonNumericNodesReachValidation(t *testing.T) {
	var body CreateTemplate
	require.NoError(t, json.Unmarshal([]byte(`{
		"minNodes": "abc",
		"maxNodes": 4,
		"instanceType": "m5.large",
		"edition": "pro",
		"resources": []
	}`), &body))

	_, errs := body.Form().Validate()
	assert.Equal(t, []string{MsgNodesNotNumeric}, errs.Messages())
}

// An empty minimum only reports the missing and non-numeric rules; the
// range rules need an integer to compare.
func TestValidate_EmptyMinNodes(t *testing.T) {
	f := validForm()
	f.MinNodes = ""

	_, errs := f.Validate()
	assert.Equal(t, []string{MsgMissingFields, MsgNodesNotNumeric}, errs.Messages())
}

func TestValidate_ZeroMinNodesIsNotMissing(t *testing.T) {
	f := validForm()
	f.MinNodes = "0"

	_, errs := f.Validate()
	assert.Equal(t, []string{MsgTooFewNodes}, errs.Messages())
}
