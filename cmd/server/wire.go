// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"mybench_backend/internal/app"
	"mybench_backend/internal/application"
	"mybench_backend/internal/candidate"
	"mybench_backend/internal/candidate/esutil"
	"mybench_backend/internal/company"
	"mybench_backend/internal/config"
	"mybench_backend/internal/credit"
	"mybench_backend/internal/firebase"
	"mybench_backend/internal/job"
	"mybench_backend/internal/notification"
	"mybench_backend/internal/platform/elasticsearch"
	"mybench_backend/internal/scheduler"
	"mybench_backend/internal/search"
	"mybench_backend/internal/shared"
	"mybench_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform
		provideLogger,
		provideDatabase,
		elasticsearch.NewClient,
		elasticsearch.NewIndexer,
		firebase.NewFirebaseService,
		wire.Bind(new(shared.TokenVerifier), new(*firebase.FirebaseService)),

		// Repositories
		user.NewGORMRepository,
		company.NewGORMRepository,
		candidate.NewGORMRepository,
		credit.NewGORMRepository,
		job.NewGORMRepository,
		application.NewGORMRepository,
		notification.NewGORMRepository,

		// Credit sits under user and candidate: it provisions accounts and gates contact details.
		credit.NewService,
		wire.Bind(new(credit.CandidateFinder), new(candidate.Repository)),
		wire.Bind(new(credit.Service), new(*credit.ServiceImplementation)),
		wire.Bind(new(user.CreditProvisioner), new(*credit.ServiceImplementation)),
		wire.Bind(new(candidate.ContactAccess), new(*credit.ServiceImplementation)),
		wire.Bind(new(search.ContactResolver), new(*credit.ServiceImplementation)),
		wire.Bind(new(application.ContactChecker), new(*credit.ServiceImplementation)),

		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(company.MemberDirectory), new(*user.ServiceImplementation)),

		company.NewService,
		wire.Bind(new(job.CompanyGate), new(company.Service)),

		esutil.NewCandidateIndexer,
		candidate.NewService,
		wire.Bind(new(candidate.Service), new(*candidate.ServiceImplementation)),

		job.NewService,
		wire.Bind(new(job.Service), new(*job.ServiceImplementation)),
		wire.Bind(new(search.JobReader), new(*job.ServiceImplementation)),
		wire.Bind(new(scheduler.JobExpirer), new(*job.ServiceImplementation)),

		search.NewService,
		wire.Bind(new(search.CandidateStore), new(candidate.Repository)),
		wire.Bind(new(search.Service), new(*search.ServiceImplementation)),

		notification.NewService,
		wire.Bind(new(application.Notifier), new(notification.Service)),

		application.NewService,
		wire.Bind(new(application.JobFinder), new(job.Repository)),
		wire.Bind(new(application.CandidateFinder), new(candidate.Repository)),
		wire.Bind(new(application.Service), new(*application.ServiceImplementation)),

		// Handlers
		user.NewHandler,
		company.NewHandler,
		candidate.NewHandler,
		search.NewHandler,
		credit.NewHandler,
		job.NewHandler,
		application.NewHandler,
		notification.NewHandler,
		wire.Struct(new(app.Handlers), "*"),

		scheduler.NewJobExpiryJob,
		app.NewServer,
	)
	return nil, nil, nil
}
