/*
Copyright (C) 2023  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Command goscm-server exposes the read-eval-print loop over a
// WebSocket, grounded on the teacher's scm/network.go "websocket"
// endpoint (Upgrader, ReadMessage loop, mutex-guarded WriteMessage),
// minus the HTTP request/response marshaling that endpoint only needed
// because it lived inside a general-purpose HTTP handler.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/docker/go-units"
	"github.com/gorilla/websocket"

	"github.com/launix-de/goscm/reader"
	"github.com/launix-de/goscm/scm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// evalRequest is one connection's parsed form waiting for the single
// worker goroutine to evaluate it against that connection's session.
type evalRequest struct {
	session *scm.Session
	form    scm.Datum
	reply   chan evalResult
}

type evalResult struct {
	value scm.Datum
	err   error
}

func main() {
	addr := flag.String("addr", ":8327", "listen address")
	maxInstr := flag.String("max-instr", "", "abort a form after this many VM instructions (human size); empty means unbounded")
	maxStack := flag.String("max-stack", "", "abort a form once its value stack exceeds this many entries (human size); empty means unbounded")
	flag.Parse()

	opts, err := parseOptions(*maxInstr, *maxStack)
	if err != nil {
		log.Fatal(err)
	}

	interp := scm.NewInterpreter(opts)
	work := make(chan evalRequest)
	go evalWorker(work)

	http.HandleFunc("/console", func(w http.ResponseWriter, r *http.Request) {
		serveConsole(w, r, interp, work)
	})
	log.Printf("goscm-server listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func parseOptions(maxInstr, maxStack string) (scm.Options, error) {
	var opts scm.Options
	if maxInstr != "" {
		n, err := units.RAMInBytes(maxInstr)
		if err != nil {
			return opts, fmt.Errorf("--max-instr: %w", err)
		}
		opts.MaxInstructions = int(n)
	}
	if maxStack != "" {
		n, err := units.RAMInBytes(maxStack)
		if err != nil {
			return opts, fmt.Errorf("--max-stack: %w", err)
		}
		opts.MaxValueStack = int(n)
	}
	return opts, nil
}

// evalWorker is the one sequential evaluator every connection's forms
// funnel through, so the VM (single-threaded by construction) never
// runs two forms at once even though many sessions are connected.
func evalWorker(work <-chan evalRequest) {
	for req := range work {
		v, err := req.session.Run(req.form)
		req.reply <- evalResult{value: v, err: err}
	}
}

func serveConsole(w http.ResponseWriter, r *http.Request, interp *scm.Interpreter, work chan<- evalRequest) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade failed:", err)
		return
	}
	defer ws.Close()

	session := scm.NewSession(interp.Global, interp.Opts)
	log.Printf("session %s connected", session.ID)

	for {
		messageType, msg, err := ws.ReadMessage()
		if err != nil {
			log.Printf("session %s disconnected: %v", session.ID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		forms, perr := reader.ReadAll(session.ID.String(), string(msg))
		if perr != nil {
			ws.WriteMessage(websocket.TextMessage, []byte("error: "+perr.Error()))
			continue
		}
		for _, form := range forms {
			reply := make(chan evalResult, 1)
			work <- evalRequest{session: session, form: form, reply: reply}
			res := <-reply
			if res.err != nil {
				ws.WriteMessage(websocket.TextMessage, []byte("error: "+res.err.Error()))
				continue
			}
			ws.WriteMessage(websocket.TextMessage, []byte(scm.Display(res.value)))
		}
	}
}
