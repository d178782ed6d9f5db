package router

import (
	"github.com/cloudwego/hertz/pkg/app"
)

func _rootMw() []app.HandlerFunc {
	return nil
}

func _handlemessageMw() []app.HandlerFunc {
	return nil
}

func _liveMw() []app.HandlerFunc {
	return nil
}
