package event

import "github.com/LeonardoBeccarini/connevents/internal/model"

type messageFunc func(data model.Number) string

func fixed(text string) messageFunc {
	return func(model.Number) string { return text }
}

// flag renders "<prefix> <yes>" for a nonzero data value, "<prefix> <no>" otherwise.
func flag(prefix, yes, no string) messageFunc {
	return func(data model.Number) string {
		if data.Truthy() {
			return prefix + " " + yes
		}
		return prefix + " " + no
	}
}

// dispatch maps every event code the firmware defines a message for.
// Codes missing here decode to an unknown Message.
var dispatch = map[model.EventCode]messageFunc{
	model.EventSetupStarted:       fixed("SETUP_STARTED"),
	model.EventCellularReady:      flag("CELLULAR_READY", "connected", "disconnected"),
	model.EventCloudConnected:     flag("CLOUD_CONNECTED", "connected", "disconnected"),
	model.EventListeningEntered:   fixed("LISTENING_ENTERED"),
	model.EventModemReset:         fixed("MODEM_RESET"),
	model.EventRebootListening:    fixed("REBOOT_LISTENING"),
	model.EventRebootNoCloud:      fixed("REBOOT_NO_CLOUD"),
	model.EventPingDNS:            flag("PING_DNS", "success", "failed"),
	model.EventPingAPI:            flag("PING_API", "success", "failed"),
	model.EventAppWatchdog:        fixed("APP_WATCHDOG"),
	model.EventTesterReset:        fixed("TESTER_RESET"),
	model.EventTesterAppWatchdog:  fixed("TESTER_APP_WATCHDOG"),
	model.EventTesterSleep:        fixed("TESTER_SLEEP"),
	model.EventLowBatterySleep:    fixed("LOW_BATTERY_SLEEP"),
	model.EventSessionEventLost:   fixed("SESSION_EVENT_LOST"),
	model.EventSessionReset:       fixed("SESSION_RESET"),
	model.EventTesterResetSession: fixed("TESTER_RESET_SESSION"),
	model.EventTesterResetModem:   fixed("TESTER_RESET_MODEM"),
	model.EventResetReason:        resetReason,
	model.EventTesterSafeMode:     fixed("TESTER_SAFE_MODE"),
	model.EventTesterPing:         func(data model.Number) string { return "TESTER_PING " + data.String() },
	model.EventStopSleepWake:      fixed("STOP_SLEEP_WAKE"),
}

// resetReasons is only consulted for model.EventResetReason.
var resetReasons = map[int64]string{
	model.ResetReasonNone:            "RESET_REASON_NONE",
	model.ResetReasonUnknown:         "RESET_REASON_UNKNOWN",
	model.ResetReasonPinReset:        "RESET_REASON_PIN_RESET",
	model.ResetReasonPowerManagement: "RESET_REASON_POWER_MANAGEMENT",
	model.ResetReasonPowerDown:       "RESET_REASON_POWER_DOWN",
	model.ResetReasonPowerBrownout:   "RESET_REASON_POWER_BROWNOUT",
	model.ResetReasonWatchdog:        "RESET_REASON_WATCHDOG",
	model.ResetReasonUpdate:          "RESET_REASON_UPDATE",
	model.ResetReasonUpdateError:     "RESET_REASON_UPDATE_ERROR",
	model.ResetReasonUpdateTimeout:   "RESET_REASON_UPDATE_TIMEOUT",
	model.ResetReasonFactoryReset:    "RESET_REASON_FACTORY_RESET",
	model.ResetReasonSafeMode:        "RESET_REASON_SAFE_MODE",
	model.ResetReasonDFUMode:         "RESET_REASON_DFU_MODE",
	model.ResetReasonPanic:           "RESET_REASON_PANIC",
	model.ResetReasonUser:            "RESET_REASON_USER",
}

// unknown sub-codes keep the prefix with an empty suffix
func resetReason(data model.Number) string {
	msg := "RESET_REASON "
	if !data.Valid {
		return msg
	}
	return msg + resetReasons[data.Value]
}

// Decode returns the message for a record. It has no side effects.
func Decode(rec model.EventRecord) model.Message {
	code, ok := rec.EventCode()
	if !ok {
		return model.Message{}
	}
	fn, ok := dispatch[code]
	if !ok {
		return model.Message{}
	}
	return model.Message{Text: fn(rec.Data), Known: true}
}

var codeNames = map[model.EventCode]string{
	model.EventSetupStarted:       "SETUP_STARTED",
	model.EventCellularReady:      "CELLULAR_READY",
	model.EventCloudConnected:     "CLOUD_CONNECTED",
	model.EventListeningEntered:   "LISTENING_ENTERED",
	model.EventModemReset:         "MODEM_RESET",
	model.EventRebootListening:    "REBOOT_LISTENING",
	model.EventRebootNoCloud:      "REBOOT_NO_CLOUD",
	model.EventPingDNS:            "PING_DNS",
	model.EventPingAPI:            "PING_API",
	model.EventAppWatchdog:        "APP_WATCHDOG",
	model.EventTesterReset:        "TESTER_RESET",
	model.EventTesterAppWatchdog:  "TESTER_APP_WATCHDOG",
	model.EventTesterSleep:        "TESTER_SLEEP",
	model.EventLowBatterySleep:    "LOW_BATTERY_SLEEP",
	model.EventSessionEventLost:   "SESSION_EVENT_LOST",
	model.EventSessionReset:       "SESSION_RESET",
	model.EventTesterResetSession: "TESTER_RESET_SESSION",
	model.EventTesterResetModem:   "TESTER_RESET_MODEM",
	model.EventResetReason:        "RESET_REASON",
	model.EventTesterSafeMode:     "TESTER_SAFE_MODE",
	model.EventTesterPing:         "TESTER_PING",
	model.EventStopSleepWake:      "STOP_SLEEP_WAKE",
}

// Name returns the symbolic name of a record's event code, or "UNKNOWN".
// Used as a tag/label value by the sinks.
func Name(rec model.EventRecord) string {
	if code, ok := rec.EventCode(); ok {
		if n, ok := codeNames[code]; ok {
			return n
		}
	}
	return "UNKNOWN"
}
