package process_test

import (
	"testing"

	"claims/models"
	"claims/process"
	"claims/refdata"

	"github.com/stretchr/testify/assert"
)

func TestJoinCompanies(t *testing.T) {
	posts := []models.Post{
		{ID: "1", ChannelName: "acme_energy"},
		{ID: "2", ChannelName: "acme_energy"},
		{ID: "3", ChannelName: "unknown_channel"},
	}
	mapping := []refdata.ChannelRow{
		{Channel: "acme_energy", Company: "Acme"},
		// Duplicate mapping row with a conflicting company; the first wins
		{Channel: "acme_energy", Company: "NotAcme"},
	}

	process.JoinCompanies(posts, mapping)

	// A duplicated mapping row must never multiply posts
	assert.Len(t, posts, 3)
	assert.Equal(t, "Acme", posts[0].Company)
	assert.Equal(t, "Acme", posts[1].Company)
	assert.Equal(t, "", posts[2].Company)
}

func TestJoinCompaniesEmptyMapping(t *testing.T) {
	posts := []models.Post{{ID: "1", ChannelName: "acme_energy"}}

	process.JoinCompanies(posts, nil)

	assert.Equal(t, "", posts[0].Company)
}
