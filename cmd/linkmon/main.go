package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"

	"github.com/robotalks/boardlink/pkg/l0/comm"
	"github.com/robotalks/boardlink/pkg/l1/bridge"
	"github.com/robotalks/boardlink/pkg/l1/msgs"
)

var (
	mqttURL  = "mqtt://localhost:1883/boardlink/"
	topic    = "#"
	discover bool
)

func init() {
	if val := os.Getenv("BOARDLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&topic, "topic", topic, "Topic filter relative to the prefix, e.g. +/top/#")
	flag.BoolVar(&discover, "discover", discover, "List bridged links and exit.")
}

func listLinks(q *bridge.Queue) {
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()
	res, err := bridge.Discover(context.Background(), q, bridge.DefaultDiscoverTimeout)
	if err != nil {
		log.Fatalln(err)
	}
	if len(res) == 0 {
		fmt.Println("No links found")
		return
	}
	for _, status := range res {
		fmt.Printf("%s/%s: %s rx=%d tx=%d corrupted=%d\n", status.HostId,
			comm.Role(status.Role), status.State, status.FramesRx, status.FramesTx, status.Corrupted)
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := bridge.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if discover {
		listLinks(q)
		return
	}
	q.Sub(topic, func(topic string, payload []byte) {
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		log.Printf("%s: [%s] %s", topic,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			msg.Serializable().String())
	})
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
