package device_simulator

import (
	"math/rand"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

// bootReasons the simulated device may boot with.
var bootReasons = []int64{
	model.ResetReasonPinReset,
	model.ResetReasonPowerDown,
	model.ResetReasonPowerBrownout,
	model.ResetReasonWatchdog,
	model.ResetReasonUpdate,
	model.ResetReasonUser,
	model.ResetReasonPanic,
}

// Generator mimics the connection lifecycle of a cellular device and records
// every transition in a Queue, the way the firmware checks do.
type Generator struct {
	q   *Queue
	rnd *rand.Rand

	cellular bool
	cloud    bool
	pings    int64

	// FailureRate is the chance per step that the link drops.
	FailureRate float64
}

func NewGenerator(q *Queue, seed int64) *Generator {
	return &Generator{q: q, rnd: rand.New(rand.NewSource(seed)), FailureRate: 0.05}
}

// Boot records what setup() logs: setup started plus the reset reason.
func (g *Generator) Boot() {
	g.cellular, g.cloud = false, false
	g.q.Add(model.EventSetupStarted, 0)
	g.q.Add(model.EventResetReason, bootReasons[g.rnd.Intn(len(bootReasons))])
}

// Step advances the simulation by one tick.
func (g *Generator) Step() {
	switch {
	case !g.cellular:
		g.setCellular(true)
	case !g.cloud:
		g.setCloud(true)
	case g.rnd.Float64() < g.FailureRate:
		g.failure()
	default:
		g.pings++
		g.q.Add(model.EventTesterPing, g.pings)
	}
}

func (g *Generator) setCellular(up bool) {
	g.cellular = up
	g.q.Add(model.EventCellularReady, boolData(up))
}

func (g *Generator) setCloud(up bool) {
	g.cloud = up
	g.q.Add(model.EventCloudConnected, boolData(up))
}

// failure drops the cloud link and walks the recovery steps the connection
// check performs: DNS and API pings, then a modem reset or a reboot.
func (g *Generator) failure() {
	g.setCloud(false)
	dns := g.rnd.Intn(2) == 0
	g.q.Add(model.EventPingDNS, boolData(dns))
	g.q.Add(model.EventPingAPI, boolData(dns && g.rnd.Intn(2) == 0))
	switch g.rnd.Intn(3) {
	case 0:
		g.q.Add(model.EventModemReset, 0)
		g.setCellular(false)
	case 1:
		g.q.Add(model.EventSessionEventLost, 0)
		g.q.Add(model.EventSessionReset, 0)
	default:
		g.q.Add(model.EventRebootNoCloud, 0)
		g.Boot()
	}
}

func boolData(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
