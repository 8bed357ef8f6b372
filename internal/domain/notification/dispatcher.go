// Package notification fans translation requests out to language subscribers.
package notification

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/subscription"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// monthlyBaseline is the request volume at which sampling starts to shrink.
// Languages below it get the full configured cap.
const monthlyBaseline = 30

// Dispatcher selects and messages subscribers for a request's languages.
// The random source is injected so sampling is reproducible in tests.
type Dispatcher struct {
	subs      subscription.Repository
	messenger Messenger
	tally     TallyRepository
	volume    VolumeEstimator
	rng       *rand.Rand
	maxPerMsg int
	log       logger.Interface
}

func NewDispatcher(
	subs subscription.Repository,
	messenger Messenger,
	tally TallyRepository,
	volume VolumeEstimator,
	rng *rand.Rand,
	maxPerMsg int,
	log logger.Interface,
) *Dispatcher {
	return &Dispatcher{
		subs:      subs,
		messenger: messenger,
		tally:     tally,
		volume:    volume,
		rng:       rng,
		maxPerMsg: maxPerMsg,
		log:       log.Named("dispatcher"),
	}
}

// Dispatch notifies subscribers of the given languages about the request
// and records the recipients on the aggregate. It returns the number of
// users messaged. Persisting the updated request is the caller's job.
func (d *Dispatcher) Dispatch(ctx context.Context, req *request.Request, languages []language.Identity) (int, error) {
	total := 0
	for _, lang := range languages {
		sent, err := d.dispatchLanguage(ctx, req, lang)
		if err != nil {
			return total, err
		}
		total += sent
	}
	return total, nil
}

func (d *Dispatcher) dispatchLanguage(ctx context.Context, req *request.Request, lang language.Identity) (int, error) {
	code := lang.PreferredCode()

	candidates, err := d.candidatesFor(ctx, lang)
	if err != nil {
		return 0, err
	}
	candidates = d.filterNotified(req, code, candidates)
	if len(candidates) == 0 {
		return 0, nil
	}

	limit := d.capFor(ctx, code)
	if limit > 0 && len(candidates) > limit {
		d.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		candidates = candidates[:limit]
	}

	subject := fmt.Sprintf("New %s translation request", lang.DisplayName())
	body := d.messageBody(req, lang)

	sent := make([]string, 0, len(candidates))
	for _, user := range candidates {
		if err := d.messenger.SendNotification(ctx, user, subject, body); err != nil {
			d.log.Warnw("notification delivery failed", "user", user, "language", code, "error", err)
			continue
		}
		sent = append(sent, user)
		if d.tally != nil {
			if err := d.tally.Increment(ctx, user, code); err != nil {
				d.log.Warnw("tally update failed", "user", user, "error", err)
			}
		}
	}
	if len(sent) > 0 {
		req.RecordNotified(code, sent)
		d.log.Infow("subscribers notified", "request", req.ID(), "language", code, "count", len(sent))
	}
	return len(sent), nil
}

// candidatesFor collects subscribers for the base code plus, when the
// identity carries a country qualifier, the qualified code. Users signed
// up for pt-br are reached by Brazilian Portuguese requests without also
// receiving every pt request.
func (d *Dispatcher) candidatesFor(ctx context.Context, lang language.Identity) ([]string, error) {
	codes := []string{lang.PreferredCode()}
	if lang.Country != "" {
		codes = append(codes, lang.PreferredCode()+"-"+strings.ToLower(lang.Country))
	}

	seen := make(map[string]struct{})
	var users []string
	for _, code := range codes {
		list, err := d.subs.ListUsersForLanguage(ctx, code)
		if err != nil {
			return nil, err
		}
		for _, user := range list {
			key := strings.ToLower(user)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			users = append(users, user)
		}
	}
	return users, nil
}

func (d *Dispatcher) filterNotified(req *request.Request, code string, users []string) []string {
	already := make(map[string]struct{})
	for _, user := range req.NotifiedUsers(code) {
		already[strings.ToLower(user)] = struct{}{}
	}
	already[strings.ToLower(req.Author())] = struct{}{}

	kept := users[:0]
	for _, user := range users {
		if _, ok := already[strings.ToLower(user)]; ok {
			continue
		}
		kept = append(kept, user)
	}
	return kept
}

// capFor scales the configured recipient cap down for languages whose
// trailing-month request volume exceeds the baseline, so subscribers to
// busy languages are not flooded.
func (d *Dispatcher) capFor(ctx context.Context, code string) int {
	if d.volume == nil || d.maxPerMsg <= 0 {
		return d.maxPerMsg
	}
	monthly, err := d.volume.MonthlyRequests(ctx, code)
	if err != nil {
		d.log.Warnw("volume lookup failed, using full cap", "language", code, "error", err)
		return d.maxPerMsg
	}
	if monthly <= monthlyBaseline {
		return d.maxPerMsg
	}
	scaled := d.maxPerMsg * monthlyBaseline / monthly
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

func (d *Dispatcher) messageBody(req *request.Request, lang language.Identity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new request for %s has been posted:\n\n", lang.DisplayName())
	fmt.Fprintf(&b, "> %s\n\n", req.RawTitle())
	b.WriteString("Reply to the post if you can help translate it. ")
	b.WriteString("To stop receiving these messages, send the bot an unsubscribe message.")
	return b.String()
}
