package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/browserscan/trustscore/internal/automation"
	"github.com/browserscan/trustscore/internal/consistency"
	"github.com/browserscan/trustscore/internal/ipintel"
	"github.com/browserscan/trustscore/internal/leak"
	"github.com/browserscan/trustscore/internal/model"
	"github.com/browserscan/trustscore/internal/scoring"
	"github.com/browserscan/trustscore/internal/useragent"
)

// Observer receives scoring outcomes. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveCard(card model.ScoreCard)
	LookupFailed()
}

type nopObserver struct{}

func (nopObserver) ObserveCard(model.ScoreCard) {}
func (nopObserver) LookupFailed()              {}

// Assembler builds and stores reports.
type Assembler struct {
	lookup   ipintel.Lookup
	store    Store
	log      *slog.Logger
	observer Observer
	ttl      time.Duration

	now   func() time.Time
	newID func() string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithObserver reports each final card to o.
func WithObserver(o Observer) Option {
	return func(a *Assembler) { a.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithIDGenerator replaces the random report ID source.
func WithIDGenerator(f func() string) Option {
	return func(a *Assembler) { a.newID = f }
}

// NewAssembler returns an Assembler that keeps reports in store for ttl.
func NewAssembler(lookup ipintel.Lookup, store Store, log *slog.Logger, ttl time.Duration, opts ...Option) *Assembler {
	a := &Assembler{
		lookup:   lookup,
		store:    store,
		log:      log,
		observer: nopObserver{},
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble evaluates the request and stores the report. Only context
// cancellation and store failures are errors; a failed IP lookup degrades
// to missing evidence.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Report, error) {
	rep, err := a.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := a.store.Save(ctx, rep, a.ttl); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	a.log.Info("scan scored",
		"report_id", rep.ID,
		"ip", rep.IP,
		"total", rep.Score.Total,
		"grade", rep.Score.Grade,
		"deductions", len(rep.Score.Deductions),
	)
	return rep, nil
}

// Evaluate builds the report without storing it. The IP lookup with its
// dependent checks, the leak classification and the User-Agent checks run
// concurrently.
func (a *Assembler) Evaluate(ctx context.Context, req Request) (*Report, error) {
	now := a.now().UTC()
	rep := &Report{
		ID:        a.newID(),
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
		IP:        req.ClientIP,
		OpenPorts: req.OpenPorts,
	}
	if rep.OpenPorts == nil {
		rep.OpenPorts = []int{}
	}

	var (
		timezoneCheck, languageCheck, osCheck model.ConsistencyCheck
		leaks                                 model.LeakTelemetry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		intel, err := a.resolve(gctx, req.ClientIP)
		if err != nil {
			return err
		}
		rep.Intel = intel
		rep.IPClassification = ipintel.ClassifyIP(intel.ASN, intel.Signals(), intel.IsBogon)
		timezoneCheck = consistency.CheckTimezone(intel.Timezone, req.Client.Timezone)
		languageCheck = consistency.CheckLanguage(intel.Country, req.Client.Languages)
		return nil
	})

	g.Go(func() error {
		rep.WebRTC = leak.ClassifyWebRTC(req.Client.WebRTCCandidateIPs, req.ClientIP)
		var region string
		if len(rep.WebRTC.LeakedIPs) > 0 {
			leaked, err := a.resolve(gctx, rep.WebRTC.LeakedIPs[0])
			if err != nil {
				return err
			}
			region = leaked.Country
		}
		leaks.WebRTC = rep.WebRTC.Telemetry(region)

		rep.DNS = leak.ClassifyDNS(req.Client.DNSServers)
		leaks.DNS = rep.DNS.Telemetry(req.Client.DNSServers)

		leaks.IPv6 = leak.ClassifyIPv6(req.Client.IPv6Address).Telemetry(req.Client.IPv6Address)
		return nil
	})

	g.Go(func() error {
		rep.UserAgent = useragent.Parse(req.UserAgent)
		osCheck = consistency.CheckOS(rep.UserAgent.OS, req.Client.WebGLRenderer)

		signals := req.Client.Automation
		signals.WebGLRenderer = req.Client.WebGLRenderer
		rep.Automation = automation.Detect(signals, req.UserAgent, req.Protocols.TLSJA3)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	protocols := req.Protocols
	rep.Network = model.NetworkEvidence{
		Risk:      rep.IPClassification.Risk(),
		Protocols: &protocols,
		Leaks:     &leaks,
	}
	rep.Consistency = model.ConsistencyEvidence{
		Timezone: &timezoneCheck,
		Language: &languageCheck,
		OS:       &osCheck,
	}

	card := scoring.ComputeScore(&rep.Network, &rep.Consistency, rep.OpenPorts)
	if rep.Automation.Detected() {
		card = scoring.ApplyBotPenalty(card, rep.Automation.Evidence())
	}
	rep.Score = card
	a.observer.ObserveCard(card)

	return rep, nil
}

// resolve looks up ip, treating provider failures as "nothing known".
func (a *Assembler) resolve(ctx context.Context, ip string) (ipintel.Intel, error) {
	intel, err := a.lookup.Lookup(ctx, ip)
	if err == nil {
		return intel, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ipintel.Intel{}, err
	}

	a.observer.LookupFailed()
	a.log.Warn("ip lookup failed", "ip", ip, "err", err)
	return ipintel.Intel{IP: ip, IsBogon: ipintel.IsBogon(ip)}, nil
}
