package web

import "embed"

// TemplatesFS embeds the page layout, page bodies and shared partials.
//
//go:embed templates/*.html templates/pages/*.html
var TemplatesFS embed.FS

// ServiceWorker is the offline cache worker, rendered per cache version.
//
//go:embed templates/sw.js
var ServiceWorker string

// StaticFS embeds static assets (css/js).
//
//go:embed static/*
var StaticFS embed.FS
