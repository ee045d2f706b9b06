package server

import (
	"crypto/tls"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"github.com/adilhn/supportflow/config"
	"github.com/adilhn/supportflow/db"
	"github.com/adilhn/supportflow/handlers"
	"github.com/adilhn/supportflow/pipeline"
	"github.com/adilhn/supportflow/services/extract_service"
)

func SetupRoutes(cfg config.Config, registry *pipeline.Registry, triage, routing pipeline.Step, store *db.Store, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	queryHandler := handlers.NewQueryHandler(registry, triage, routing, store, cfg.QueryTimeout, logger)
	r.HandleFunc("/query", queryHandler.HandleQuery).Methods("POST")
	r.HandleFunc("/query/stream", queryHandler.HandleQueryStream).Methods("POST")

	chatHandler := handlers.NewChatHandler(store, logger)
	r.HandleFunc("/users", chatHandler.CreateUser).Methods("POST")
	r.HandleFunc("/users/{id}/chat-histories", chatHandler.ListChatHistories).Methods("GET")
	r.HandleFunc("/chat-histories", chatHandler.CreateChatHistory).Methods("POST")
	r.HandleFunc("/chat-histories/{id}/messages", chatHandler.ListMessages).Methods("GET")
	r.HandleFunc("/chat-histories/{id}/messages", chatHandler.CreateMessage).Methods("POST")

	ticketHandler := handlers.NewTicketHandler(store, logger)
	r.HandleFunc("/tickets", ticketHandler.ListTickets).Methods("GET")
	r.HandleFunc("/tickets/{ticket_id}", ticketHandler.GetTicket).Methods("GET")
	r.HandleFunc("/tickets/{ticket_id}/status", ticketHandler.UpdateTicketStatus).Methods("PATCH")

	uploadHandler := handlers.NewUploadHandler(extract_service.NewDocumentExtractor(logger), logger)
	r.HandleFunc("/upload", uploadHandler.HandleUpload).Methods("POST")

	return r
}

// ServeProduction builds the server when we operate in a production environment.
func ServeProduction(cfg config.Config, n *negroni.Negroni) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	// Listen for HTTP requests on port 80 in a new goroutine. Use
	// autocertManager.HTTPHandler(nil) as the handler. This will send ACME
	// "http-01" challenge responses as necessary, and 302 redirect all other
	// requests to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:   autocertManager.GetCertificate,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Minute, // streaming responses outlive normal writes
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts the server when we operate in a dev environment.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
