package stack

import "github.com/KaramelBytes/paperstack-cli/internal/manifest"

func mernBackendPackage(d Data) *manifest.Document {
	return manifest.New().
		Set("name", d.ProjectName+"-backend").
		Set("version", "1.0.0").
		Set("description", "Backend API for research paper application").
		Set("main", "server.js").
		Set("scripts", manifest.New().
			Set("start", "node server.js").
			Set("dev", "nodemon server.js")).
		Set("dependencies", manifest.New().
			Set("express", "^4.18.2").
			Set("mongoose", "^7.5.0").
			Set("cors", "^2.8.5").
			Set("dotenv", "^16.3.1").
			Set("bcryptjs", "^2.4.3").
			Set("jsonwebtoken", "^9.0.2").
			Set("multer", "^1.4.5-lts.1")).
		Set("devDependencies", manifest.New().
			Set("nodemon", "^3.0.1"))
}

func mernFrontendPackage(d Data) *manifest.Document {
	return manifest.New().
		Set("name", d.ProjectName+"-frontend").
		Set("version", "1.0.0").
		Set("private", true).
		Set("dependencies", manifest.New().
			Set("react", "^18.2.0").
			Set("react-dom", "^18.2.0").
			Set("react-router-dom", "^6.15.0").
			Set("axios", "^1.5.0").
			Set("react-scripts", "5.0.1")).
		Set("scripts", reactScripts()).
		Set("eslintConfig", manifest.New().
			Set("extends", []string{"react-app", "react-app/jest"})).
		Set("browserslist", manifest.New().
			Set("production", []string{">0.2%", "not dead", "not op_mini all"}).
			Set("development", []string{"last 1 chrome version", "last 1 firefox version", "last 1 safari version"}))
}

func reactScripts() *manifest.Document {
	return manifest.New().
		Set("start", "react-scripts start").
		Set("build", "react-scripts build").
		Set("test", "react-scripts test").
		Set("eject", "react-scripts eject")
}

// meanBackendPackage is the MERN backend descriptor plus pdf-parse.
func meanBackendPackage(d Data) *manifest.Document {
	doc := mernBackendPackage(d)
	deps, _ := doc.Get("dependencies")
	deps.(*manifest.Document).Set("pdf-parse", "^1.1.1")
	return doc
}

func angularPackage(d Data) *manifest.Document {
	return manifest.New().
		Set("name", d.ProjectName+"-frontend").
		Set("version", "1.0.0").
		Set("scripts", manifest.New().
			Set("ng", "ng").
			Set("start", "ng serve").
			Set("build", "ng build").
			Set("watch", "ng build --watch --configuration development").
			Set("test", "ng test")).
		Set("dependencies", manifest.New().
			Set("@angular/animations", "^16.0.0").
			Set("@angular/common", "^16.0.0").
			Set("@angular/compiler", "^16.0.0").
			Set("@angular/core", "^16.0.0").
			Set("@angular/forms", "^16.0.0").
			Set("@angular/platform-browser", "^16.0.0").
			Set("@angular/platform-browser-dynamic", "^16.0.0").
			Set("@angular/router", "^16.0.0").
			Set("rxjs", "~7.8.0").
			Set("tslib", "^2.3.0").
			Set("zone.js", "~0.12.0")).
		Set("devDependencies", manifest.New().
			Set("@angular-devkit/build-angular", "^16.0.0").
			Set("@angular/cli", "~16.0.0").
			Set("@angular/compiler-cli", "^16.0.0").
			Set("@types/jasmine", "~4.3.0").
			Set("jasmine-core", "~4.6.0").
			Set("karma", "~6.4.0").
			Set("karma-chrome-launcher", "~3.1.0").
			Set("karma-coverage", "~2.2.0").
			Set("karma-jasmine", "~5.1.0").
			Set("karma-jasmine-html-reporter", "~2.1.0").
			Set("typescript", "~5.0.2"))
}
