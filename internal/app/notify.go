package app

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"propmatch/internal/domain"
)

const (
	NotifyDirectBuyer = "direct_match_buyer"
	NotifyDirect      = "direct_match"
	NotifyCriteria    = "criteria_match"
)

// NewMatch is a match created during one recalculation batch.
type NewMatch struct {
	Property domain.Property
	WantedAd domain.WantedAd
	Score    int
	Type     domain.MatchType
}

var money = message.NewPrinter(language.English)

// BuildNotifications groups a batch of newly created matches by property
// owner and returns one notification per owner, in first-seen order.
// Matches whose owner has no user id are skipped.
func BuildNotifications(created []NewMatch) []domain.Notification {
	var order []string
	groups := map[string][]NewMatch{}
	for _, m := range created {
		uid := m.Property.OwnerUserID
		if uid == "" {
			continue
		}
		if _, ok := groups[uid]; !ok {
			order = append(order, uid)
		}
		groups[uid] = append(groups[uid], m)
	}

	out := make([]domain.Notification, 0, len(order))
	for _, uid := range order {
		out = append(out, ownerNotification(uid, groups[uid]))
	}
	return out
}

func ownerNotification(userID string, ms []NewMatch) domain.Notification {
	var (
		direct, criteria int
		topScore         int
		propIDs, adIDs   []string
		seenP, seenA     = map[string]bool{}, map[string]bool{}
	)
	for _, m := range ms {
		if m.Type == domain.MatchDirect {
			direct++
		} else {
			criteria++
		}
		if m.Score > topScore {
			topScore = m.Score
		}
		if !seenP[m.Property.ID] {
			seenP[m.Property.ID] = true
			propIDs = append(propIDs, m.Property.ID)
		}
		if !seenA[m.WantedAd.ID] {
			seenA[m.WantedAd.ID] = true
			adIDs = append(adIDs, m.WantedAd.ID)
		}
	}

	payload := map[string]any{
		"propertyIds":   propIDs,
		"wantedAdIds":   adIDs,
		"directCount":   direct,
		"criteriaCount": criteria,
		"topScore":      topScore,
	}

	if len(ms) == 1 && direct == 1 {
		m := ms[0]
		if name := buyerName(m.WantedAd); name != "" && m.WantedAd.Budget > 0 {
			payload["matchType"] = string(domain.MatchDirect)
			payload["buyerName"] = name
			payload["budget"] = m.WantedAd.Budget
			payload["address"] = m.Property.Address
			return domain.Notification{
				UserID: userID,
				Type:   NotifyDirectBuyer,
				Title:  "A buyer wants your property",
				Message: fmt.Sprintf("%s, with a budget of %s, is looking for %s.",
					name, formatMoney(m.WantedAd.Budget), m.Property.Address),
				Payload: payload,
			}
		}
	}

	subject := "your property"
	if len(propIDs) > 1 {
		subject = "your properties"
	}

	if direct > 0 {
		title := "A buyer wants your property"
		if direct > 1 {
			title = fmt.Sprintf("%d buyers want your property", direct)
		}
		msg := fmt.Sprintf("%d %s named %s directly", direct, plural(direct, "buyer", "buyers"), subject)
		if criteria > 0 {
			msg += fmt.Sprintf(" and %d more %s on criteria", criteria, plural(criteria, "matches", "match"))
		}
		return domain.Notification{
			UserID:  userID,
			Type:    NotifyDirect,
			Title:   title,
			Message: msg + ".",
			Payload: payload,
		}
	}

	title := "New buyer match"
	if criteria > 1 {
		title = fmt.Sprintf("%d new buyer matches", criteria)
	}
	return domain.Notification{
		UserID: userID,
		Type:   NotifyCriteria,
		Title:  title,
		Message: fmt.Sprintf("%d %s %s on location and criteria.",
			criteria, plural(criteria, "buyer matches", "buyers match"), subject),
		Payload: payload,
	}
}

func buyerName(ad domain.WantedAd) string {
	if ad.BuyerName == nil {
		return ""
	}
	return strings.TrimSpace(*ad.BuyerName)
}

func formatMoney(v int64) string { return money.Sprintf("$%d", v) }

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
