package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/edvart/fighter-roulette/internal/battle"
	"github.com/edvart/fighter-roulette/internal/ranking"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/settings"
	log "github.com/sirupsen/logrus"
)

// Coordinator owns all mutable state and processes commands sequentially, so
// at most one battle generation is ever in flight.
type Coordinator struct {
	commands    chan Command
	subscribers []chan Event
	state       *State
}

// New creates a new Coordinator over state.
func New(state *State) *Coordinator {
	return &Coordinator{
		commands:    make(chan Command, 100),
		subscribers: make([]chan Event, 0),
		state:       state,
	}
}

// Send submits a command to the coordinator.
func (c *Coordinator) Send(cmd Command) {
	c.commands <- cmd
}

// Subscribe creates a new event channel for a consumer.
// It must be called before Run.
func (c *Coordinator) Subscribe() <-chan Event {
	ch := make(chan Event, 100)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Run starts the coordinator loop. It blocks until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	log.Println("Coordinator started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Coordinator shutting down")
			return
		case cmd := <-c.commands:
			c.handleCommand(cmd)
		}
	}
}

func (c *Coordinator) emit(e Event) {
	for _, ch := range c.subscribers {
		select {
		case ch <- e:
		default:
			log.Warnf("Subscriber event channel full, dropping %T", e)
		}
	}
}

func (c *Coordinator) handleCommand(cmd Command) {
	switch cmd := cmd.(type) {
	case GenerateBattle:
		res := c.handleGenerateBattle(cmd)
		if cmd.Response != nil {
			cmd.Response <- res
		}
	case AssignWinner:
		reply(cmd.Response, c.handleAssignWinner(cmd))
	case ClearWinner:
		reply(cmd.Response, c.handleClearWinner(cmd))
	case StageTierWeights:
		c.state.Settings.StageTierWeights(cmd.Weights)
		log.Debugf("Staged tier weights %v", cmd.Weights)
		reply(cmd.Response, nil)
	case StageBumpWeights:
		c.state.Settings.StageBumpWeights(cmd.Weights)
		log.Debugf("Staged bump weights %v", cmd.Weights)
		reply(cmd.Response, nil)
	case CommitSettings:
		reply(cmd.Response, c.handleCommitSettings())
	case SetCooldown:
		reply(cmd.Response, c.handleSetCooldown(cmd))
	case SetLowestTier:
		reply(cmd.Response, c.handleSetLowestTier(cmd))
	case getSettingsCmd:
		snap := SettingsSnapshot{
			Active:  c.state.Settings.Active(),
			Staged:  c.state.Settings.Staged(),
			Players: c.state.Players,
		}
		if c.state.LowestTier != nil {
			t := *c.state.LowestTier
			snap.LowestTier = &t
		}
		cmd.Response <- snap
	case getFighterCmd:
		f, err := c.state.Registry.Lookup(cmd.Name)
		if err != nil {
			cmd.Response <- fighterReply{err: err}
			break
		}
		cmd.Response <- fighterReply{stats: f.Stats()}
	case getRankingCmd:
		entries, err := ranking.Rank(c.state.Stats(), cmd.Player, cmd.By)
		cmd.Response <- rankingReply{entries: entries, err: err}
	case getMatchupCmd:
		m, err := c.state.GetMatchup(cmd.MatchupID)
		if err != nil {
			cmd.Response <- matchupReply{err: err}
			break
		}
		cmd.Response <- matchupReply{view: m.View()}
	case getRecentCmd:
		recent := c.state.Recent()
		views := make([]battle.View, len(recent))
		for i, m := range recent {
			views[i] = m.View()
		}
		cmd.Response <- views
	}
}

func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

func (c *Coordinator) handleGenerateBattle(cmd GenerateBattle) GenerateResult {
	players := cmd.Players
	if players == 0 {
		players = c.state.Players
	}

	m, err := c.state.Generator.Generate(battle.Request{
		Players:    players,
		LowestTier: c.state.LowestTier,
	})
	if err != nil {
		var ex *battle.ExhaustedError
		if errors.As(err, &ex) {
			log.WithFields(log.Fields{
				"players":  players,
				"attempts": ex.Attempts,
			}).Warn(err.Error())
			c.emit(GenerationFailed{Players: players, Attempts: ex.Attempts, Reason: err.Error()})
		}
		return GenerateResult{Err: err}
	}

	c.state.Players = players
	c.state.remember(m)

	view := m.View()
	fields := log.Fields{"matchup": shortID(m.ID), "base": m.BaseTier.String(), "attempts": m.Attempts}
	for _, s := range view.Slots {
		fields[fmt.Sprintf("p%d", s.Player+1)] = s.Fighter
	}
	log.WithFields(fields).Info("Battle generated")

	c.emit(BattleGenerated{Matchup: view})
	return GenerateResult{Matchup: view}
}

func (c *Coordinator) handleAssignWinner(cmd AssignWinner) error {
	m, err := c.state.GetMatchup(cmd.MatchupID)
	if err != nil {
		return err
	}

	var previous *int
	if w, ok := m.Winner(); ok {
		previous = &w
	}
	if err := m.AssignWinner(cmd.Player); err != nil {
		return err
	}

	log.Printf("Matchup %s: player %d wins with %s", shortID(m.ID), cmd.Player+1, m.Slots[cmd.Player].Fighter.Name)

	c.emit(WinnerAssigned{
		Matchup:  m.View(),
		Previous: previous,
		Fighters: fighterStats(m),
	})
	return nil
}

func (c *Coordinator) handleClearWinner(cmd ClearWinner) error {
	m, err := c.state.GetMatchup(cmd.MatchupID)
	if err != nil {
		return err
	}
	if err := m.ClearWinner(); err != nil {
		return err
	}

	log.Printf("Matchup %s: result cleared", shortID(m.ID))

	c.emit(WinnerCleared{Matchup: m.View(), Fighters: fighterStats(m)})
	return nil
}

func fighterStats(m *battle.Matchup) []roster.Stats {
	out := make([]roster.Stats, len(m.Slots))
	for i, s := range m.Slots {
		out[i] = s.Fighter.Stats()
	}
	return out
}

func (c *Coordinator) handleCommitSettings() error {
	if err := c.state.Settings.Commit(); err != nil {
		var we *settings.WeightError
		if errors.As(err, &we) {
			c.emit(SettingsRejected{TierSum: we.TierSum, BumpSum: we.BumpSum, Reason: we.Error()})
		}
		log.Warnf("Settings rejected: %v", err)
		return err
	}

	active := c.state.Settings.Active()
	log.WithFields(log.Fields{
		"tier": active.Tier,
		"bump": active.Bump,
	}).Info("Settings committed")

	c.emit(SettingsCommitted{Settings: active})
	return nil
}

func (c *Coordinator) handleSetCooldown(cmd SetCooldown) error {
	if err := cmd.Config.Validate(); err != nil {
		return err
	}
	// Tracker and Settings apply the bounds checked above.
	if err := c.state.Tracker.Configure(cmd.Config); err != nil {
		return err
	}
	if err := c.state.Settings.SetCooldown(cmd.Config); err != nil {
		return err
	}

	log.Printf("Cooldown set to %d (allow SS: %v, allow S: %v)", cmd.Config.Capacity, cmd.Config.AllowSS, cmd.Config.AllowS)
	c.emit(CooldownUpdated{Config: cmd.Config})
	return nil
}

func (c *Coordinator) handleSetLowestTier(cmd SetLowestTier) error {
	if cmd.Tier == nil {
		c.state.LowestTier = nil
		log.Println("Low-tier restriction off")
		return nil
	}
	if err := roster.CheckTier(*cmd.Tier); err != nil {
		return err
	}
	t := *cmd.Tier
	c.state.LowestTier = &t
	log.Printf("Low-tier restriction set to %s", t)
	return nil
}

// SettingsSnapshot holds the active and staged settings.
type SettingsSnapshot struct {
	Active     settings.Values `json:"active"`
	Staged     settings.Values `json:"staged"`
	LowestTier *roster.Tier    `json:"lowestTier,omitempty"`
	Players    int             `json:"players"`
}

// GetSettings returns a snapshot of the current settings.
func (c *Coordinator) GetSettings() SettingsSnapshot {
	respCh := make(chan SettingsSnapshot, 1)
	c.commands <- getSettingsCmd{Response: respCh}
	return <-respCh
}

// GetFighter returns a copy of one fighter's counters.
func (c *Coordinator) GetFighter(name string) (roster.Stats, error) {
	respCh := make(chan fighterReply, 1)
	c.commands <- getFighterCmd{Name: name, Response: respCh}
	resp := <-respCh
	return resp.stats, resp.err
}

// Rankings sorts every registered fighter for a player slot or ranking.Aggregate.
func (c *Coordinator) Rankings(player int, by ranking.By) ([]ranking.Entry, error) {
	respCh := make(chan rankingReply, 1)
	c.commands <- getRankingCmd{Player: player, By: by, Response: respCh}
	resp := <-respCh
	return resp.entries, resp.err
}

// GetMatchup returns a remembered matchup.
func (c *Coordinator) GetMatchup(id string) (battle.View, error) {
	respCh := make(chan matchupReply, 1)
	c.commands <- getMatchupCmd{MatchupID: id, Response: respCh}
	resp := <-respCh
	return resp.view, resp.err
}

// Recent returns remembered matchups, newest first.
func (c *Coordinator) Recent() []battle.View {
	respCh := make(chan []battle.View, 1)
	c.commands <- getRecentCmd{Response: respCh}
	return <-respCh
}

// getSettingsCmd is an internal command to safely read settings.
type getSettingsCmd struct {
	Response chan SettingsSnapshot
}

func (getSettingsCmd) command() {}

type fighterReply struct {
	stats roster.Stats
	err   error
}

type getFighterCmd struct {
	Name     string
	Response chan fighterReply
}

func (getFighterCmd) command() {}

type rankingReply struct {
	entries []ranking.Entry
	err     error
}

type getRankingCmd struct {
	Player   int
	By       ranking.By
	Response chan rankingReply
}

func (getRankingCmd) command() {}

type matchupReply struct {
	view battle.View
	err  error
}

type getMatchupCmd struct {
	MatchupID string
	Response  chan matchupReply
}

func (getMatchupCmd) command() {}

type getRecentCmd struct {
	Response chan []battle.View
}

func (getRecentCmd) command() {}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
