package routes

import (
	"net/http"

	"todo-web/app/controllers"
	"todo-web/app/logging"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, todoController *controllers.TodoController) {
	router.HandleFunc("/", todoController.Index).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/update/{sno:[0-9]+}", todoController.Update).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/delete/{sno:[0-9]+}", todoController.Delete).Methods(http.MethodGet)
	router.HandleFunc("/about", todoController.About).Methods(http.MethodGet)
	router.HandleFunc("/healthz", todoController.Health).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(todoController.NotFound)
}

// NewHandler builds the router and wraps it with request logging and panic
// recovery, so unmatched routes are logged too.
func NewHandler(todoController *controllers.TodoController, logger *zap.Logger) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, todoController)
	return logging.Recoverer(logger)(logging.Middleware(logger)(router))
}
