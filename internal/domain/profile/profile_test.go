package profile

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkills(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"js, node , react", []string{"js", "node", "react"}},
		{"js,,react", []string{"js", "", "react"}},
		{"go,", []string{"go", ""}},
		{"  rust  ", []string{"rust"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseSkills(tc.in))
		})
	}
}

func TestText_UnmarshalJSONPresenceRule(t *testing.T) {
	cases := []struct {
		raw     string
		present bool
		value   string
	}{
		{`"Acme"`, true, "Acme"},
		{`""`, false, ""},
		{`null`, false, ""},
		{`0`, false, ""},
		{`0.0`, false, ""},
		{`false`, false, ""},
		{`"0"`, true, "0"},
		{`" "`, true, " "},
		{`42`, true, "42"},
		{`true`, true, "true"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			var txt Text
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &txt))
			v, ok := txt.Get()
			assert.Equal(t, tc.present, ok)
			if tc.present {
				assert.Equal(t, tc.value, v)
			}
		})
	}
}

func TestText_RejectsCompositeValues(t *testing.T) {
	var txt Text
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &txt))
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &txt))
}

func TestText_MissingFieldIsAbsent(t *testing.T) {
	var in struct {
		Company Text `json:"company"`
		Status  Text `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Developer"}`), &in))

	assert.False(t, in.Company.IsPresent())
	assert.Nil(t, in.Company.Ptr())
	assert.Equal(t, "Developer", *in.Status.Ptr())
}

func TestBuild(t *testing.T) {
	owner := uuid.New()
	p := Build(owner, Fields{
		Company: T("Acme"),
		Bio:     T(""),
		Status:  T("Developer"),
		Skills:  T("go, sql"),
		Twitter: T("https://twitter.com/acme"),
	})

	assert.Equal(t, owner, p.OwnerID)
	require.NotNil(t, p.Company)
	assert.Equal(t, "Acme", *p.Company)
	assert.Nil(t, p.Bio)
	assert.Nil(t, p.Website)
	assert.Equal(t, []string{"go", "sql"}, p.Skills)
	require.NotNil(t, p.Social.Twitter)
	assert.Nil(t, p.Social.YouTube)
}

func TestBuild_NoSkillsLeavesSkillsUnset(t *testing.T) {
	p := Build(uuid.New(), Fields{Status: T("Student")})

	assert.Nil(t, p.Skills)
	assert.Equal(t, Social{}, p.Social)
}

func TestParseOwnerID(t *testing.T) {
	id := uuid.New()
	got, err := ParseOwnerID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseOwnerID("5d7a514b5d2c12c7449be042")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}
