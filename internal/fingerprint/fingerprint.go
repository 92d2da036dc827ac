// Package fingerprint derives stable identity and content hashes for staged
// events. The identity hash is the sole deduplication key across sources.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sgmusicchat/newsite/internal/domain"
)

const dateLayout = "2006-01-02"

// UID hashes the immutable identifying fields of an event. Volatile fields
// (price, description, end time) are deliberately excluded so a later
// correction updates the existing row instead of creating a duplicate.
func UID(venueID int64, eventDate time.Time, startTime string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d-%s-%s", venueID, eventDate.Format(dateLayout), startTime)))
	return hex.EncodeToString(sum[:])
}

// Content hashes every mutable field of a staged event plus its association
// lists. Two upserts with identical content produce the same hash, which is
// what lets the publish workflow skip unchanged records.
func Content(ev domain.StagedEvent, genreIDs, artistIDs []int64) string {
	var b strings.Builder
	b.WriteString(ev.Name)
	b.WriteByte('|')
	b.WriteString(ev.EndTime)
	b.WriteByte('|')
	b.WriteString(formatPrice(ev.PriceMin))
	b.WriteByte('|')
	b.WriteString(formatPrice(ev.PriceMax))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(ev.IsFree))
	b.WriteByte('|')
	b.WriteString(ev.Description)
	b.WriteByte('|')
	b.WriteString(ev.AgeRestriction)
	b.WriteByte('|')
	b.WriteString(ev.TicketURL)
	b.WriteByte('|')
	b.WriteString(ev.EventURL)
	b.WriteByte('|')
	b.WriteString(ev.ImageURL)
	b.WriteString("|g:")
	writeIDs(&b, genreIDs)
	b.WriteString("|a:")
	writeIDs(&b, artistIDs)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func formatPrice(p *float64) string {
	if p == nil {
		return "null"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

func writeIDs(b *strings.Builder, ids []int64) {
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
}
