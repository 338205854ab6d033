package debug

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

var enabled = false

func init() {
	enabled = os.Getenv("ZYN_DEBUG_DASHBOARD") == "true"
	if enabled {
		log.Println("🐛 Dashboard de monitoramento habilitado")
	}
}

// IsEnabled retorna se o dashboard de monitoramento está habilitado
func IsEnabled() bool {
	return enabled
}

// LogEvent é a mensagem enviada aos dashboards conectados
type LogEvent struct {
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// SendLog transmite um log estruturado para os dashboards conectados
func SendLog(source, level, message string, metadata map[string]interface{}) {
	if !enabled {
		return
	}
	event := LogEvent{
		Type:      "log",
		Source:    source,
		Level:     level,
		Message:   message,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("debug: erro serializando evento: %v", err)
		return
	}
	Hub.Broadcast(payload)
}

// LogInfo envia um log de nível info ao dashboard
func LogInfo(message string, metadata map[string]interface{}) {
	SendLog("backend", "info", message, metadata)
}

// LogWarn envia um log de nível warn ao dashboard
func LogWarn(message string, metadata map[string]interface{}) {
	SendLog("backend", "warn", message, metadata)
}

// LogError envia um log de nível error ao dashboard
func LogError(message string, metadata map[string]interface{}) {
	SendLog("backend", "error", message, metadata)
}
