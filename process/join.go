package process

import (
	"claims/models"
	"claims/refdata"

	log "github.com/sirupsen/logrus"
)

// JoinCompanies attaches a company to every post by channel name. The
// mapping is deduplicated by channel (keep-first) before joining, so the
// join is a left join that can never change the post count. Unmatched
// channels leave Company empty.
func JoinCompanies(posts []models.Post, mapping []refdata.ChannelRow) {
	byChannel := make(map[string]string, len(mapping))
	duplicates := 0
	for _, row := range mapping {
		if _, ok := byChannel[row.Channel]; ok {
			duplicates++
			continue
		}
		byChannel[row.Channel] = row.Company
	}
	if duplicates > 0 {
		log.WithFields(log.Fields{
			"rows": duplicates,
		}).Warn("Dropped duplicate channel mapping rows before join")
	}

	matched := 0
	for i := range posts {
		if company, ok := byChannel[posts[i].ChannelName]; ok {
			posts[i].Company = company
			matched++
		}
	}

	log.WithFields(log.Fields{
		"posts":   len(posts),
		"matched": matched,
	}).Info("Joined posts to companies")
}
