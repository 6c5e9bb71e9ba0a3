package stack

// readme is the shared README used by every stack except MERN.
var readme = FileTemplate{Path: "README.md", Source: "shared/README.md"}

// reactApp is the App component shared by the React-fronted stacks.
var reactApp = FileTemplate{Path: "frontend/src/App.js", Source: "shared/App.js"}

// reactSupplements bootstrap a create-react-app frontend around App.js.
var reactSupplements = []FileTemplate{
	{Path: "frontend/src/index.js", Source: "shared/index.js"},
	{Path: "frontend/public/index.html", Source: "shared/index.html"},
	{Path: "frontend/src/styles/App.css", Source: "shared/App.css"},
}

func init() {
	Register(Stack{
		ID:          MERN,
		Description: "MongoDB, Express.js, React.js, Node.js",
		Aliases:     []string{"mern"},
		Files: []FileTemplate{
			{Path: "backend/package.json", Manifest: mernBackendPackage},
			{Path: "backend/server.js", Source: "mern/server.js"},
			{Path: "backend/models/User.js", Source: "mern/User.js"},
			{Path: "backend/models/ResearchPaper.js", Source: "mern/ResearchPaper.js"},
			{Path: "backend/routes/auth.js", Source: "mern/auth.js"},
			{Path: "backend/routes/research.js", Source: "mern/research.js"},
			{Path: "frontend/package.json", Manifest: mernFrontendPackage},
			{Path: "frontend/src/App.js", Source: "mern/App.js"},
			{Path: "frontend/src/pages/Dashboard.js", Source: "mern/Dashboard.js"},
			{Path: "frontend/src/pages/UploadPaper.js", Source: "mern/UploadPaper.js"},
			{Path: "backend/.env", Source: "mern/env"},
			{Path: "README.md", Source: "mern/README.md"},
		},
		Supplements: reactSupplements,
		Install:     []Step{{Dir: "backend", Command: []string{"npm", "install"}}},
		Start:       Step{Dir: "backend", Command: []string{"npm", "start"}},
	})
	Register(Stack{
		ID:          MEAN,
		Description: "MongoDB, Express.js, Angular, Node.js",
		Aliases:     []string{"mean"},
		Files: []FileTemplate{
			{Path: "backend/server.js", Source: "mean/server.js"},
			{Path: "backend/package.json", Manifest: meanBackendPackage},
			{Path: "backend/models/User.js", Source: "mean/User.js"},
			{Path: "backend/routes/api.js", Source: "mean/api.js"},
			{Path: "backend/config/database.js", Source: "mean/database.js"},
			{Path: "frontend/src/app.component.ts", Source: "mean/app.component.ts"},
			{Path: "frontend/src/app.component.html", Source: "mean/app.component.html"},
			{Path: "frontend/src/app.component.css", Source: "mean/app.component.css"},
			{Path: "frontend/src/app.module.ts", Source: "mean/app.module.ts"},
			{Path: "frontend/src/app-routing.module.ts", Source: "mean/app-routing.module.ts"},
			{Path: "frontend/package.json", Manifest: angularPackage},
			{Path: "frontend/angular.json", Source: "mean/angular.json"},
			{Path: "frontend/src/index.html", Source: "mean/index.html"},
			readme,
		},
		Install: []Step{{Dir: "backend", Command: []string{"npm", "install"}}},
		Start:   Step{Dir: "backend", Command: []string{"npm", "start"}},
	})
	Register(Stack{
		ID:          LAMP,
		Description: "Linux, Apache, MySQL, PHP",
		Aliases:     []string{"lamp"},
		Files: []FileTemplate{
			{Path: "index.php", Source: "lamp/index.php"},
			{Path: "config/database.php", Source: "lamp/database.php"},
			{Path: "models/User.php", Source: "lamp/User.php"},
			readme,
		},
		Start: Step{Command: []string{"php", "-S", "localhost:8000"}},
	})
	Register(Stack{
		ID:          Django,
		Description: "Python, Django, PostgreSQL, React",
		Aliases:     []string{"django"},
		Files: []FileTemplate{
			{Path: "backend/manage.py", Source: "django/manage.py"},
			{Path: "backend/settings.py", Source: "django/settings.py"},
			{Path: "backend/urls.py", Source: "django/urls.py"},
			reactApp,
			readme,
		},
		Supplements: reactSupplements,
		Start:       Step{Dir: "backend", Command: []string{"python", "manage.py", "runserver"}},
	})
	Register(Stack{
		ID:          Spring,
		Description: "Java, Spring Boot, MySQL, React",
		Aliases:     []string{"spring", "spring boot"},
		Files: []FileTemplate{
			{Path: "backend/src/main/java/com/example/Application.java", Source: "spring/Application.java"},
			{Path: "backend/pom.xml", Source: "spring/pom.xml"},
			reactApp,
			readme,
		},
		Supplements: reactSupplements,
		Start:       Step{Dir: "backend", Command: []string{"mvn", "spring-boot:run"}},
	})
	Register(Stack{
		ID:          Laravel,
		Description: "PHP, Laravel, MySQL, Vue.js",
		Aliases:     []string{"laravel"},
		Files: []FileTemplate{
			{Path: "backend/routes/web.php", Source: "laravel/web.php"},
			{Path: "backend/app/Http/Controllers/ApiController.php", Source: "laravel/ApiController.php"},
			{Path: "frontend/src/App.vue", Source: "laravel/App.vue"},
			readme,
		},
		Install: []Step{{Dir: "backend", Command: []string{"composer", "install"}}},
		Start:   Step{Dir: "backend", Command: []string{"php", "artisan", "serve"}},
	})
	Register(Stack{
		ID:          Flask,
		Description: "Python, Flask, SQLite, React",
		Aliases:     []string{"flask"},
		Files: []FileTemplate{
			{Path: "backend/app.py", Source: "flask/app.py"},
			{Path: "backend/requirements.txt", Source: "flask/requirements.txt"},
			reactApp,
			readme,
		},
		Supplements: reactSupplements,
		Install:     []Step{{Dir: "backend", Command: []string{"pip", "install", "-r", "requirements.txt"}}},
		Start:       Step{Dir: "backend", Command: []string{"python", "app.py"}},
	})
	Register(Stack{
		ID:          Rails,
		Description: "Ruby, Rails, PostgreSQL, React",
		Aliases:     []string{"rails", "ruby on rails"},
		Files: []FileTemplate{
			{Path: "backend/config/routes.rb", Source: "rails/routes.rb"},
			{Path: "backend/app/controllers/application_controller.rb", Source: "rails/application_controller.rb"},
			reactApp,
			readme,
		},
		Supplements: reactSupplements,
		Install:     []Step{{Dir: "backend", Command: []string{"bundle", "install"}}},
		Start:       Step{Dir: "backend", Command: []string{"rails", "server"}},
	})
}
