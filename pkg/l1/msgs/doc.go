// Package msgs provides the messages the bridge exchanges over MQTT.
package msgs
