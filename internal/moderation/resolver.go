package moderation

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// NoValidTargetError is returned when no argument token resolved to a user.
// Token carries the first token, for the "user does not exist" reply.
type NoValidTargetError struct {
	Token string
}

func (e *NoValidTargetError) Error() string {
	return "no valid target: " + e.Token
}

// TargetMatches is a non-empty ordered list of resolved users plus the
// remaining tokens rejoined as the reason.
type TargetMatches struct {
	Users  []*discordgo.User
	Reason string
}

var (
	mentionPattern   = regexp.MustCompile(`^<@!?(\d+)>$`)
	snowflakePattern = regexp.MustCompile(`^\d+$`)
)

// ResolveTargets resolves argument tokens to users in order, stopping at the
// first token that fails to match. Mention and raw ID matching always apply;
// tag, username and nickname matching only while zero users have matched, so
// free-text reason words are not mistaken for usernames.
func ResolveTargets(tokens []string, mentions []*discordgo.User, members []*discordgo.Member) (TargetMatches, error) {
	var users []*discordgo.User

	matched := 0
	for _, token := range tokens {
		extensive := len(users) == 0
		user := extractUser(token, mentions, members, extensive)
		if user == nil {
			break
		}
		users = append(users, user)
		matched++
	}

	if len(users) == 0 {
		token := ""
		if len(tokens) > 0 {
			token = stripCodeMarks(tokens[0])
		}
		return TargetMatches{}, &NoValidTargetError{Token: token}
	}

	return TargetMatches{
		Users:  users,
		Reason: strings.Join(tokens[matched:], " "),
	}, nil
}

func extractUser(token string, mentions []*discordgo.User, members []*discordgo.Member, extensive bool) *discordgo.User {
	if match := mentionPattern.FindStringSubmatch(token); match != nil {
		id := match[1]
		for _, user := range mentions {
			if user != nil && user.ID == id {
				return user
			}
		}
		if user := userByID(id, members); user != nil {
			return user
		}
		return nil
	}

	if snowflakePattern.MatchString(token) {
		if user := userByID(token, members); user != nil {
			return user
		}
		for _, user := range mentions {
			if user != nil && user.ID == token {
				return user
			}
		}
		return nil
	}

	if !extensive {
		return nil
	}

	if name, discriminator, ok := strings.Cut(token, "#"); ok {
		for _, member := range members {
			if member == nil || member.User == nil {
				continue
			}
			if strings.EqualFold(member.User.Username, name) && member.User.Discriminator == discriminator {
				return member.User
			}
		}
	}

	for _, member := range members {
		if member == nil || member.User == nil {
			continue
		}
		if strings.EqualFold(member.User.Username, token) {
			return member.User
		}
	}
	for _, member := range members {
		if member == nil || member.User == nil {
			continue
		}
		if member.Nick != "" && strings.EqualFold(member.Nick, token) {
			return member.User
		}
	}
	return nil
}

func userByID(id string, members []*discordgo.Member) *discordgo.User {
	for _, member := range members {
		if member != nil && member.User != nil && member.User.ID == id {
			return member.User
		}
	}
	return nil
}

func stripCodeMarks(value string) string {
	return strings.ReplaceAll(value, "`", "")
}
