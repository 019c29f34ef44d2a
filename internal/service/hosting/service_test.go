package hosting

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/sharetube/playerwall/internal/player"
	"github.com/sharetube/playerwall/internal/playerctx"
	"github.com/sharetube/playerwall/internal/repository/connection"
	"github.com/sharetube/playerwall/internal/repository/mirror"
	mirrorRedis "github.com/sharetube/playerwall/internal/repository/mirror/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	playerID string
	command  Command
}

type fakeConnRepo struct {
	bound map[string]*connection.Conn
	sent  []sent
	mu    sync.Mutex
}

func newFakeConnRepo() *fakeConnRepo {
	return &fakeConnRepo{bound: make(map[string]*connection.Conn)}
}

func (r *fakeConnRepo) Add(conn *connection.Conn, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bound[playerID]; ok {
		return connection.ErrAlreadyExists
	}
	r.bound[playerID] = conn
	return nil
}

func (r *fakeConnRepo) RemoveByPlayerID(playerID string, conn *connection.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bound, ok := r.bound[playerID]; !ok || bound != conn {
		return connection.ErrNotFound
	}
	delete(r.bound, playerID)
	return nil
}

func (r *fakeConnRepo) GetPlayerID(conn *connection.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for playerID, bound := range r.bound {
		if bound == conn {
			return playerID, nil
		}
	}
	return "", connection.ErrNotFound
}

func (r *fakeConnRepo) Send(playerID string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bound[playerID]; !ok {
		return connection.ErrNotFound
	}
	r.sent = append(r.sent, sent{playerID: playerID, command: *v.(*Command)})
	return nil
}

type fakeMirror struct {
	events []mirror.Event
}

func (m *fakeMirror) Publish(_ context.Context, e *mirror.Event) error {
	m.events = append(m.events, *e)
	return nil
}

type fakeSaver struct {
	saved map[player.Identity]string
}

func (s *fakeSaver) Save(_ context.Context, id player.Identity, locator string) {
	s.saved[id] = locator
}

type fixture struct {
	service  *service
	registry *player.Registry
	conns    *fakeConnRepo
	mirror   *fakeMirror
	saver    *fakeSaver
}

func newFixture() fixture {
	slog.SetLogLoggerLevel(slog.LevelDebug)
	f := fixture{
		registry: player.NewRegistry(slog.Default()),
		conns:    newFakeConnRepo(),
		mirror:   &fakeMirror{},
		saver:    &fakeSaver{saved: make(map[player.Identity]string)},
	}
	f.service = NewService(f.registry, f.conns, f.mirror, f.saver, slog.Default())
	return f
}

func TestRegisterHost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.service.RegisterHost(ctx, &RegisterHostParams{
		PlayerID: "p1",
		Conn:     connection.NewConn(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, player.Identity("p1"), resp.PlayerID)
	assert.Equal(t, player.DefaultState(), *resp.Player.State)
	assert.True(t, f.registry.Has("p1"))

	require.Len(t, f.mirror.events, 1)
	assert.Equal(t, mirror.EventAdded, f.mirror.events[0].Type)
	assert.Equal(t, player.Identity("p1"), f.mirror.events[0].Identity)
}

func TestRegisterHostGeneratesIdentity(t *testing.T) {
	f := newFixture()

	resp, err := f.service.RegisterHost(context.Background(), &RegisterHostParams{Conn: connection.NewConn(nil)})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.PlayerID)
	assert.True(t, f.registry.Has(resp.PlayerID))
}

func TestRegisterHostRejectsLiveDuplicate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := connection.NewConn(nil)

	_, err := f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: "p1", Conn: first})
	require.NoError(t, err)

	_, err = f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: "p1", Conn: connection.NewConn(nil)})
	assert.ErrorIs(t, err, ErrIdentityInUse)

	// remount after teardown is allowed
	require.NoError(t, f.service.UnregisterHost(ctx, &UnregisterHostParams{Conn: first}))
	_, err = f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: "p1", Conn: connection.NewConn(nil)})
	assert.NoError(t, err)
}

func TestUnregisterHost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	conn := connection.NewConn(nil)

	_, err := f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: "p1", Conn: conn})
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.UnregisterHost(ctx, &UnregisterHostParams{Conn: connection.NewConn(nil)}), ErrHostNotBound)
	assert.True(t, f.registry.Has("p1"), "stale teardown must keep the player")

	require.NoError(t, f.service.UnregisterHost(ctx, &UnregisterHostParams{Conn: conn}))
	assert.False(t, f.registry.Has("p1"))
	assert.Equal(t, mirror.EventRemoved, f.mirror.events[len(f.mirror.events)-1].Type)
	assert.Nil(t, f.mirror.events[len(f.mirror.events)-1].State)
}

func TestUnregisterHostResolvesPlayerFromConn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	conns := map[string]*connection.Conn{
		"a": connection.NewConn(nil),
		"b": connection.NewConn(nil),
	}
	for id, conn := range conns {
		_, err := f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: id, Conn: conn})
		require.NoError(t, err)
	}

	require.NoError(t, f.service.UnregisterHost(ctx, &UnregisterHostParams{Conn: conns["b"]}))
	assert.True(t, f.registry.Has("a"))
	assert.False(t, f.registry.Has("b"))
	assert.Equal(t, player.Identity("b"), f.mirror.events[len(f.mirror.events)-1].Identity)

	assert.ErrorIs(t, f.service.UnregisterHost(ctx, &UnregisterHostParams{Conn: conns["b"]}), ErrHostNotBound)
	assert.True(t, f.registry.Has("a"))
}

func TestUpdateState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.UpdateState(ctx, &UpdateStateParams{PlayerID: "p1", Playing: lo.ToPtr(true)})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: "p1", Conn: connection.NewConn(nil)})
	require.NoError(t, err)

	p, err := f.service.UpdateState(ctx, &UpdateStateParams{
		PlayerID:    "p1",
		Playing:     lo.ToPtr(true),
		CurrentTime: lo.ToPtr(4.5),
		Duration:    lo.ToPtr(90.0),
	})
	require.NoError(t, err)
	assert.True(t, p.State.Playing)
	assert.Equal(t, 4.5, p.State.CurrentTime)
	assert.Equal(t, 1.0, p.State.Volume, "unset fields keep their value")
	assert.Equal(t, 90.0, p.State.Duration.OrEmpty())

	live := f.registry.Get("p1").Get()
	assert.True(t, live.State.Playing)
	assert.Equal(t, mirror.EventUpdated, f.mirror.events[len(f.mirror.events)-1].Type)
}

func TestUpdateStateClearsDuration(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: "p1", Conn: connection.NewConn(nil)})
	require.NoError(t, err)
	_, err = f.service.UpdateState(ctx, &UpdateStateParams{PlayerID: "p1", Duration: lo.ToPtr(90.0)})
	require.NoError(t, err)

	p, err := f.service.UpdateState(ctx, &UpdateStateParams{PlayerID: "p1", ClearDuration: true, CurrentTime: lo.ToPtr(0.0)})
	require.NoError(t, err)
	assert.True(t, p.State.Duration.IsAbsent())
	assert.True(t, f.registry.Get("p1").Get().State.Duration.IsAbsent())

	p, err = f.service.UpdateState(ctx, &UpdateStateParams{PlayerID: "p1", ClearDuration: true, Duration: lo.ToPtr(45.0)})
	require.NoError(t, err)
	assert.Equal(t, 45.0, p.State.Duration.OrEmpty(), "an explicit duration wins over clearing")
}

func TestInvokeForwardsCommands(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: "p1", Conn: connection.NewConn(nil)})
	require.NoError(t, err)

	require.NoError(t, f.service.Invoke(ctx, &InvokeParams{PlayerID: "p1", Action: ActionPlay}))
	require.NoError(t, f.service.Invoke(ctx, &InvokeParams{PlayerID: "p1", Action: ActionSeek, Value: lo.ToPtr(30.0)}))
	require.NoError(t, f.service.Invoke(ctx, &InvokeParams{PlayerID: "p1", Action: ActionSetVolume, Value: lo.ToPtr(0.5)}))
	require.NoError(t, f.service.Invoke(ctx, &InvokeParams{PlayerID: "p1", Action: ActionScreenshot}))
	require.NoError(t, f.service.Invoke(ctx, &InvokeParams{PlayerID: "p1", Action: ActionToggleRecording}))
	require.NoError(t, f.service.Invoke(ctx, &InvokeParams{PlayerID: "p1", Action: ActionPause}))

	require.Len(t, f.conns.sent, 6)
	types := lo.Map(f.conns.sent, func(s sent, _ int) string { return s.command.Type })
	assert.Equal(t, []string{
		CommandPlay, CommandSeek, CommandSetVolume, CommandTakeScreenshot, CommandToggleRecording, CommandPause,
	}, types)
	assert.Equal(t, map[string]float64{"time": 30}, f.conns.sent[1].command.Payload)
	assert.Equal(t, map[string]float64{"volume": 0.5}, f.conns.sent[2].command.Payload)
}

func TestInvokeOnUnknownPlayerIsNoop(t *testing.T) {
	f := newFixture()

	assert.NoError(t, f.service.Invoke(context.Background(), &InvokeParams{PlayerID: "ghost", Action: ActionPlay}))
	assert.Empty(t, f.conns.sent)
	assert.False(t, f.registry.Has("ghost"))
}

func TestInvokeValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	assert.ErrorIs(t, f.service.Invoke(ctx, &InvokeParams{PlayerID: "p1", Action: "dance"}), ErrUnknownAction)
	assert.ErrorIs(t, f.service.Invoke(ctx, &InvokeParams{PlayerID: "p1", Action: ActionSeek}), ErrValueRequired)
}

func TestLookups(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		_, err := f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: id, Conn: connection.NewConn(nil)})
		require.NoError(t, err)
	}

	list := f.service.ListPlayers(ctx)
	assert.Equal(t, []player.Identity{"a", "b"}, lo.Map(list, func(p player.Player, _ int) player.Identity { return p.Identity }))

	assert.Equal(t, player.Identity("ghost"), f.service.GetPlayer(ctx, "ghost").Identity)
	assert.Equal(t, player.DefaultState(), *f.service.GetPlayer(ctx, "ghost").State)

	assert.Equal(t, player.Identity("a"), f.service.CurrentPlayer(playerctx.Provide(ctx, "a")).Identity)
	assert.Equal(t, player.DefaultState(), *f.service.CurrentPlayer(ctx).State)
}

func TestWatch(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(playerctx.Provide(context.Background(), "p1"))
	defer cancel()

	updates := f.service.Watch(ctx)
	first := <-updates
	assert.Equal(t, player.DefaultState(), *first.State)

	_, err := f.service.RegisterHost(ctx, &RegisterHostParams{PlayerID: "p1", Conn: connection.NewConn(nil)})
	require.NoError(t, err)
	_, err = f.service.UpdateState(ctx, &UpdateStateParams{PlayerID: "p1", Recording: lo.ToPtr(true)})
	require.NoError(t, err)

	deadline := time.After(time.Second)
	for {
		select {
		case p := <-updates:
			if p.State.Recording {
				return
			}
		case <-deadline:
			t.Fatal("recording update not observed")
		}
	}
}

func TestSaveScreenshot(t *testing.T) {
	f := newFixture()

	f.service.SaveScreenshot(context.Background(), &SaveScreenshotParams{PlayerID: "p1", Locator: "data:image/png;base64,AA=="})
	assert.Equal(t, "data:image/png;base64,AA==", f.saver.saved["p1"])
}

func TestSupportedActions(t *testing.T) {
	assert.Equal(t, []Action{"pause", "play", "screenshot", "seek", "set_volume", "toggle_recording"}, SupportedActions())
}

func TestRegisterHostWithRedisMirror(t *testing.T) {
	s, _ := miniredis.Run()
	defer s.Close()
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer rc.Close()

	registry := player.NewRegistry(slog.Default())
	service := NewService(registry, newFakeConnRepo(), mirrorRedis.NewRepo(rc), &fakeSaver{saved: map[player.Identity]string{}}, slog.Default())

	ctx := context.Background()
	sub := rc.Subscribe(ctx, mirrorRedis.AllPlayersChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	_, err = service.RegisterHost(ctx, &RegisterHostParams{PlayerID: "p1", Conn: connection.NewConn(nil)})
	require.NoError(t, err)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, `"type":"PLAYER_ADDED"`)
	assert.Contains(t, msg.Payload, `"identity":"p1"`)
}
