package moderation

import (
	"regexp"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

var mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)

// mentionsInOrder returns the ids of users mentioned in args, in the order
// they appear. Only ids Discord resolved as mentions are kept, so reply
// pings and stray ids are ignored.
func mentionsInOrder(args string, resolved []*discordgo.User) []string {
	known := lo.SliceToMap(lo.Filter(resolved, func(u *discordgo.User, _ int) bool { return u != nil }),
		func(u *discordgo.User) (string, struct{}) { return u.ID, struct{}{} })

	var ids []string
	for _, m := range mentionPattern.FindAllStringSubmatch(args, -1) {
		if _, ok := known[m[1]]; ok {
			ids = append(ids, m[1])
		}
	}
	return lo.Uniq(ids)
}
