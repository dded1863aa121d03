package model

// EventCode identifies what happened on the device. The values are fixed by
// the firmware and must never change.
type EventCode int64

const (
	EventSetupStarted EventCode = iota // 0
	EventCellularReady
	EventCloudConnected
	EventListeningEntered
	EventModemReset
	EventRebootListening
	EventRebootNoCloud
	EventPingDNS
	EventPingAPI
	EventAppWatchdog
	EventTesterReset // 10
	EventTesterAppWatchdog
	EventTesterSleep
	EventLowBatterySleep
	EventSessionEventLost
	EventSessionReset
	EventTesterResetSession
	EventTesterResetModem
	EventResetReason
	EventTesterSafeMode
	EventTesterPing // 20
	EventStopSleepWake

	// EventFailureSleep is emitted by newer firmware but has no message yet.
	EventFailureSleep
)

// ResetReason values carried in the data field of EventResetReason.
const (
	ResetReasonNone            int64 = 0
	ResetReasonUnknown         int64 = 10
	ResetReasonPinReset        int64 = 20
	ResetReasonPowerManagement int64 = 30
	ResetReasonPowerDown       int64 = 40
	ResetReasonPowerBrownout   int64 = 50
	ResetReasonWatchdog        int64 = 60
	ResetReasonUpdate          int64 = 70
	ResetReasonUpdateError     int64 = 80
	ResetReasonUpdateTimeout   int64 = 90
	ResetReasonFactoryReset    int64 = 100
	ResetReasonSafeMode        int64 = 110
	ResetReasonDFUMode         int64 = 120
	ResetReasonPanic           int64 = 130
	ResetReasonUser            int64 = 140
)
