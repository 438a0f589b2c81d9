//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"log"

	"github.com/esimov/ascii-cam/config"
	"github.com/esimov/ascii-cam/pipeline"
	"github.com/esimov/ascii-cam/wasm/canvas"
	"github.com/esimov/ascii-cam/wasm/webgl"
)

// reportEvery is the number of ticks between two telemetry reports.
const reportEvery = 100

func main() {
	c := canvas.NewCanvas()
	webcam, err := c.StartWebcam()
	if err != nil {
		c.Alert("Webcam not detected!")
		return
	}

	cfg := config.Default()
	gl, err := webgl.New(webcam.Video(), cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		log.Println(err)
		c.Alert("WebGL is not available: " + err.Error())
		return
	}

	socket := canvas.InitWebSocket(c.Host())
	defer socket.Close()

	p, err := pipeline.New(cfg, webcam, gl, webcam, webcam, pipeline.WithReport(reportEvery, socket.Report))
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	if err := p.Start(context.Background()); err != nil {
		log.Printf("render loop stopped (%s): %v", pipeline.KindOf(err), err)
		socket.ReportError(p.Stats(), err)
		c.Alert(err.Error())
	}
}
