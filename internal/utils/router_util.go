package utils

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func RoutesSummary(r *mux.Router, logger *zap.SugaredLogger) {
	err := r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		fields := make([]interface{}, 0, 8)

		pathTemplate, err := route.GetPathTemplate()
		if err == nil {
			fields = append(fields, "route", pathTemplate)
		}
		queriesTemplates, err := route.GetQueriesTemplates()
		if err == nil && len(queriesTemplates) > 0 {
			fields = append(fields, "queries", strings.Join(queriesTemplates, ","))
		}
		methods, err := route.GetMethods()
		if err == nil {
			fields = append(fields, "methods", strings.Join(methods, ","))
		}
		if v := reflect.ValueOf(route.GetHandler()); v.Kind() == reflect.Func {
			fields = append(fields, "handler", runtime.FuncForPC(v.Pointer()).Name())
		}
		logger.Debugw("Route", fields...)
		return nil
	})

	if err != nil {
		logger.Warn(err)
	}
}
