package postgres_test

import (
	"context"
	"sync"
	"time"

	postgresadapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/catalogrepo"
	"orderflow/internal/adapters/out/postgres/directoryrepo"
	"orderflow/internal/adapters/out/provider"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type uowFactoryFunc func() commands.UoW

func (f uowFactoryFunc) Create() commands.UoW { return f() }

func (suite *UnitOfWorkIntegrationTestSuite) TestRotation_ConcurrentConfirmationsFollowTheRoster() {
	const (
		rosterSize = 3
		cycles     = 3
		orders     = rosterSize * cycles
	)
	ctx := context.Background()
	db := suite.database.DB

	suite.Require().NoError(db.Exec(`INSERT INTO delivery_locations (city, area) VALUES ('Oran', 'Es Senia')`).Error)
	for i := 0; i < rosterSize; i++ {
		suite.Require().NoError(db.Exec(`INSERT INTO users (id, role) VALUES (?, 'followup')`,
			kernel.NewUUID().String()).Error)
	}
	suite.Require().NoError(db.Exec(`INSERT INTO users (id, role, active) VALUES (?, 'followup', FALSE)`,
		kernel.NewUUID().String()).Error)

	roster, err := directoryrepo.NewGormDirectory(db).ActiveFollowupWorkers(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(roster, rosterSize)

	ids := make([]int64, 0, orders)
	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	for i := 0; i < orders; i++ {
		o, err := order.NewOrder(order.Draft{
			Customer: order.Customer{Name: "Sami", Phone: "0555111222", City: "Oran", Area: "Es Senia"},
			Items:    []order.ItemDraft{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		}, time.Now())
		suite.Require().NoError(err)
		suite.Require().NoError(seed.OrderRepository().Add(ctx, o))
		ids = append(ids, o.ID())
	}
	suite.Require().NoError(seed.Commit(ctx))

	gormFactory := postgresadapter.NewGormUnitOfWorkFactory(db, 10*time.Second)
	pipeline := commands.NewMutationPipeline(
		catalogrepo.NewGormCatalog(db),
		directoryrepo.NewGormDirectory(db),
		provider.NewFake(7),
		nil, nil, time.Now,
	)
	handler := commands.NewUpdateOrderCommandHandler(
		uowFactoryFunc(func() commands.UoW { return gormFactory.Create() }), pipeline)
	staff := kernel.NewUUID()

	var wg sync.WaitGroup
	failures := make(chan error, orders)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			cmd, err := commands.NewUpdateOrderCommand(id, staff, order.RoleStaff, order.Patch{
				Fields:             []order.Field{order.FieldAgentStatus, order.FieldDeliveryProviderID},
				AgentStatus:        order.AgentConfirmed,
				DeliveryProviderID: ptrTo(int64(99)),
			})
			if err == nil {
				_, err = handler.Handle(ctx, cmd)
			}
			if err != nil {
				failures <- err
			}
		}(id)
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		suite.Require().NoError(err)
	}

	var assigned []string
	suite.Require().NoError(db.Raw(`SELECT followup_id::text FROM orders WHERE followup_id IS NOT NULL`).
		Scan(&assigned).Error)
	suite.Require().Len(assigned, orders)

	perWorker := make(map[string]int, rosterSize)
	for _, w := range assigned {
		perWorker[w]++
	}
	suite.Require().Len(perWorker, rosterSize, "every active worker is used, inactive ones never")
	for _, w := range roster {
		suite.Equal(cycles, perWorker[w.String()], "worker %s", w)
	}

	var rotations int64
	suite.Require().NoError(db.Table("order_history").
		Where("field = ? AND new_value <> ''", string(order.FieldFollowupID)).
		Count(&rotations).Error)
	suite.Equal(int64(orders), rotations, "pointer advanced once per confirmation")

	var last string
	suite.Require().NoError(db.Raw(`SELECT last_worker_id::text FROM followup_rotation WHERE id = 1`).
		Scan(&last).Error)
	suite.Equal(roster[(orders-1)%rosterSize].String(), last)
}

func ptrTo[T any](v T) *T { return &v }
