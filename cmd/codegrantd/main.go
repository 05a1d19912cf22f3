// Command codegrantd is a reference host for the ae and ce Authorization
// Engine/Client Engine packages: it wires a TOML client registry and a
// grant store (in-process or Redis) to an HTTP authorization endpoint and
// token endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hooklift/codegrant/ae"
	"github.com/hooklift/codegrant/clientstore"
	"github.com/hooklift/codegrant/store"
)

func main() {
	cfg := conf()

	if cfg.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}

	clients, err := clientstore.FromFile(cfg.ClientsFile)
	if err != nil {
		log.Fatal(err)
	}
	if len(clients) == 0 {
		log.Fatal("must configure at least one registered client")
	}

	var grants store.GrantStore
	if cfg.Redis != nil {
		grants = store.NewRedis(cfg.Redis)
	} else {
		grants = store.NewMemory(time.Duration(cfg.GrantTTLSecs) * time.Second)
	}

	h := newHost(clients, grants, cfg.TokenLifetimeSecs)
	engine := ae.New(h)

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.AuthzPath, authzHandler(engine))
	mux.HandleFunc(cfg.TokenPath, tokenHandler(engine))

	bindAddr := fmt.Sprintf("%s:%d", cfg.BindHost, cfg.BindPort)
	server := &http.Server{Addr: bindAddr, Handler: mux}

	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
		<-signalChan
		server.Shutdown(context.Background())
		log.Infoln("signal received, stopping service")
	}()

	log.Printf("starting codegrantd on %s\n", bindAddr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Warnf("error shutting down service: %v\n", err)
	} else {
		log.Println("server stopped")
	}
}

func conf() *config {
	var configPath = flag.String("config", "", "path to a TOML configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.ClientsFile == "" {
		log.Fatal("must set clients-file in config")
	}
	return cfg
}

// authzHandler implements the authorization endpoint. This reference host
// has no resource-owner session or consent UI: it auto-grants every
// syntactically valid request, which is appropriate only for development
// and for hosts that put their own authentication/consent step in front of
// this handler.
func authzHandler(engine *ae.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		pending, fail := engine.HandleAuthzRequest(req)
		if fail != nil {
			log.Warnf("authorization request rejected: %v", fail)
			http.Error(w, "invalid authorization request: "+fail.Kind.String(), http.StatusBadRequest)
			return
		}

		redirect, err := engine.Grant(pending)
		if err != nil {
			log.Errorf("granting authorization request: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, req, redirect, http.StatusFound)
	}
}

func tokenHandler(engine *ae.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			http.Error(w, "expected application/x-www-form-urlencoded", http.StatusBadRequest)
			return
		}
		engine.HandleTokenRequest(w, req)
	}
}
