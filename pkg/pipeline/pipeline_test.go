package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwheatley/hygrid/pkg/logging"
	"github.com/dwheatley/hygrid/pkg/metrics"
	"github.com/dwheatley/hygrid/pkg/model"
	"github.com/dwheatley/hygrid/pkg/registry"
	"github.com/dwheatley/hygrid/pkg/store"
)

// stubSolver returns a canned status with a zero vector of the right width.
// noValues mimics a backend that stopped before finding any feasible point.
type stubSolver struct {
	status   model.Status
	noValues bool
	calls    int
	cols     int
}

func (s *stubSolver) Solve(ctx context.Context, p *model.Problem) (*model.Solution, error) {
	s.calls++
	s.cols = p.NumVars()
	sol := &model.Solution{Status: s.status}
	feasible := s.status == model.StatusOptimal || s.status == model.StatusTimeLimit
	if feasible && !s.noValues {
		sol.Values = make([]float64, p.NumVars())
	}
	return sol, nil
}

// captureStore records what the pipeline asked to persist.
type captureStore struct {
	rec   store.RunRecord
	saved int
	fail  error
}

func (c *captureStore) SaveRun(ctx context.Context, rec store.RunRecord, sn *model.SolvedNetwork) error {
	c.saved++
	c.rec = rec
	if c.fail != nil {
		return c.fail
	}
	return nil
}

func testCatalogs(t *testing.T) (*registry.Registry, *registry.HubCatalog, *registry.ArcCatalog, registry.Settings) {
	t.Helper()

	reg, err := registry.NewRegistry(
		[]registry.ProductionTech{
			{
				Name: "smr", Type: registry.ProdTypeThermal, Purity: registry.PurityLow,
				CapitalUSDPerTonPerDay: 200000, VariableUSDPerTon: 50, MMBtuPerTon: 160,
				Utilization: 0.9, MinTonsPerDay: 10, MaxTonsPerDay: 200, CO2PerTon: 9.2,
			},
		},
		[]registry.ConversionTech{
			{Name: "psa", Role: registry.RolePurifier, CapitalUSDPerTonPerDay: 30000, VariableUSDPerTon: 10, Utilization: 0.95},
		},
		[]registry.DistributionTech{
			{Name: "pipeline", Kind: registry.DistKindPipeline, CapitalUSDPerUnit: 500000, VariableUSDPerKmTon: 0.05, FlowLimitTonsPerDay: 200},
		},
		nil,
		[]registry.DemandSector{
			{Sector: "industrialFuel", DemandType: registry.DemandTypeLow, BreakevenUSDPerTon: 1500},
		},
	)
	require.NoError(t, err)

	hubs, err := registry.NewHubCatalog([]registry.HubRecord{
		{
			Name: "Houston", CapitalMultiplier: 1.1, NaturalGasUSDPerMMBtu: 3.2,
			DemandTonsPerDaybySector: map[string]float64{"industrialFuel": 100},
		},
		{Name: "Freeport", CapitalMultiplier: 1.1, NaturalGasUSDPerMMBtu: 3.1},
	}, nil, reg)
	require.NoError(t, err)

	arcs, err := registry.NewArcCatalog([]registry.Arc{
		{From: "Houston", To: "Freeport", DistanceKm: 90},
	})
	require.NoError(t, err)

	return reg, hubs, arcs, registry.DefaultSettings()
}

func TestPipelineRun(t *testing.T) {
	reg, hubs, arcs, settings := testCatalogs(t)
	stub := &stubSolver{status: model.StatusOptimal}
	sink := &captureStore{}

	p, err := New(reg, hubs, arcs, settings,
		WithSolver(stub),
		WithLogger(logging.NewNopLogger()),
		WithMetrics(metrics.NewRegistry()),
		WithStore(sink),
	)
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, stub.calls)
	require.NotNil(t, res.Network)
	assert.Equal(t, model.StatusOptimal, res.Network.Status)
	assert.Equal(t, res.Problem.NumVars(), stub.cols)

	assert.Equal(t, 1, sink.saved)
	assert.Equal(t, res.RunID, sink.rec.ID)
	assert.Equal(t, "optimal", sink.rec.Status)
	assert.Equal(t, res.Network.Graph.NumNodes(), sink.rec.NetworkNodes)
}

func TestPipelineRunIsRepeatable(t *testing.T) {
	reg, hubs, arcs, settings := testCatalogs(t)
	stub := &stubSolver{status: model.StatusOptimal}

	p, err := New(reg, hubs, arcs, settings,
		WithSolver(stub),
		WithLogger(logging.NewNopLogger()),
		WithMetrics(metrics.NewRegistry()),
	)
	require.NoError(t, err)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	second, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Problem.NumVars(), second.Problem.NumVars())
	assert.Equal(t, first.Problem.NumConstraints(), second.Problem.NumConstraints())
}

func TestPipelineSurfacesInfeasibility(t *testing.T) {
	reg, hubs, arcs, settings := testCatalogs(t)
	p, err := New(reg, hubs, arcs, settings,
		WithSolver(&stubSolver{status: model.StatusInfeasible}),
		WithLogger(logging.NewNopLogger()),
		WithMetrics(metrics.NewRegistry()),
	)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	assert.ErrorIs(t, err, model.ErrInfeasible)
}

func TestPipelineReturnsIncumbentOnTimeout(t *testing.T) {
	reg, hubs, arcs, settings := testCatalogs(t)
	p, err := New(reg, hubs, arcs, settings,
		WithSolver(&stubSolver{status: model.StatusTimeLimit}),
		WithLogger(logging.NewNopLogger()),
		WithMetrics(metrics.NewRegistry()),
	)
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	assert.ErrorIs(t, err, model.ErrSolverTimeout)
	require.NotNil(t, res, "incumbent result must survive the timeout")
	assert.Equal(t, model.StatusTimeLimit, res.Network.Status)
}

func TestPipelineFailsOnTimeoutWithoutIncumbent(t *testing.T) {
	reg, hubs, arcs, settings := testCatalogs(t)
	sink := &captureStore{}

	p, err := New(reg, hubs, arcs, settings,
		WithSolver(&stubSolver{status: model.StatusTimeLimit, noValues: true}),
		WithLogger(logging.NewNopLogger()),
		WithMetrics(metrics.NewRegistry()),
		WithStore(sink),
	)
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	assert.ErrorIs(t, err, model.ErrSolverTimeout)
	assert.Nil(t, res, "no feasible point means no result")
	assert.Zero(t, sink.saved, "nothing to persist without an incumbent")
}

func TestPipelineToleratesStoreFailure(t *testing.T) {
	reg, hubs, arcs, settings := testCatalogs(t)
	sink := &captureStore{fail: errors.New("connection refused")}

	p, err := New(reg, hubs, arcs, settings,
		WithSolver(&stubSolver{status: model.StatusOptimal}),
		WithLogger(logging.NewNopLogger()),
		WithMetrics(metrics.NewRegistry()),
		WithStore(sink),
	)
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err, "persistence failure must not fail the run")
	assert.NotNil(t, res)
	assert.Equal(t, 1, sink.saved)
}
