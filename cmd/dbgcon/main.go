package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"time"

	"github.com/robotalks/dbgcon/pkg/comm/mqtt"
	"github.com/robotalks/dbgcon/pkg/console"
	"github.com/robotalks/dbgcon/pkg/env"
	fx "github.com/robotalks/dbgcon/pkg/framework"
	"github.com/robotalks/dbgcon/pkg/menus"
	"github.com/robotalks/dbgcon/pkg/monitor"
	"github.com/robotalks/dbgcon/pkg/port"
	"github.com/robotalks/dbgcon/pkg/server"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	conf := env.NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}

	srv := &server.Server{
		Config: conf.ConsoleConfig(),
		Baud:   conf.Baud,
		Menus: func() *console.Registry {
			return menus.New(menus.Info{
				Firmware: conf.Firmware,
				Compiled: conf.Compiled,
				ID:       conf.ID,
			}, fx.WallClock)
		},
	}

	var q *mqtt.Queue
	if conf.UsesMQTT() {
		var err error
		q, err = mqtt.NewAnnouncingQueue(conf.MQTTURL, mqtt.Meta{
			ID:        conf.ID,
			Transport: conf.Transport,
			Firmware:  conf.Firmware,
		})
		if err != nil {
			log.Fatalln(err)
		}
		if err = q.ConnectWait(10 * time.Second); err != nil {
			log.Fatalln(err)
		}
		defer func() {
			q.Withdraw(conf.ID).WaitTimeout(time.Second)
			q.Close()
		}()
		if conf.Events {
			srv.Handler = monitor.NewPublisher(q, conf.ID)
		}
	}

	runner := fx.NewRunner().HandleSignals()
	ctx := runner.Context
	var run func(context.Context) error
	switch conf.Transport {
	case env.TransportStdio:
		stdio, interactive, err := port.Stdio(os.Stdin, os.Stdout)
		if err != nil {
			log.Fatalln(err)
		}
		if !interactive {
			// piped input ends lines with LF.
			srv.Config.EndOfLine = '\n'
		}
		run = func(ctx context.Context) error {
			defer stdio.Close()
			return srv.Serve(ctx, stdio)
		}
	case env.TransportSerial:
		run = func(ctx context.Context) error {
			return srv.Run(ctx, port.Serial(conf.Device))
		}
	case env.TransportMQTT:
		run = func(ctx context.Context) error {
			return srv.Run(ctx, port.MQTT(q, conf.ID))
		}
	case env.TransportTCP:
		l, err := net.Listen("tcp", conf.Listen)
		if err != nil {
			log.Fatalln(err)
		}
		run = func(ctx context.Context) error {
			return srv.ServeListener(ctx, l)
		}
	case env.TransportWebSocket:
		run = func(ctx context.Context) error {
			return srv.ListenAndServeWebSocket(ctx, conf.Listen)
		}
	}

	runner.Go(fx.NamedRun(conf.Transport, fx.RunnableFunc(run)))
	if err := runner.Wait(); err != nil && ctx.Err() == nil {
		log.Fatalln(err)
	}
}
