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
)

func (suite *UnitOfWorkIntegrationTestSuite) TestClaim_ConcurrentClaimsBySameAgentHoldOneOrder() {
	const claims = 4
	ctx := context.Background()
	db := suite.database.DB

	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	for i := 0; i < claims; i++ {
		suite.Require().NoError(seed.OrderRepository().Add(ctx, suite.newOrder()))
	}
	suite.Require().NoError(seed.Commit(ctx))

	gormFactory := postgresadapter.NewGormUnitOfWorkFactory(db, 10*time.Second)
	pipeline := commands.NewMutationPipeline(
		catalogrepo.NewGormCatalog(db),
		directoryrepo.NewGormDirectory(db),
		provider.NewFake(7),
		nil, nil, time.Now,
	)
	handler := commands.NewClaimNextOrderCommandHandler(
		uowFactoryFunc(func() commands.UoW { return gormFactory.Create() }), pipeline, nil)

	agent := kernel.NewUUID()
	cmd, err := commands.NewClaimNextOrderCommand(agent, order.RoleAgent, []string{commands.CapabilityUpdateOrders})
	suite.Require().NoError(err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = make(map[commands.ClaimOutcome]int)
		orderIDs = make(map[int64]struct{})
		start    = make(chan struct{})
	)
	for i := 0; i < claims; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			result, err := handler.Handle(ctx, cmd)
			suite.NoError(err)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			outcomes[result.Outcome]++
			orderIDs[result.Order.ID()] = struct{}{}
		}()
	}
	close(start)
	wg.Wait()

	suite.Equal(1, outcomes[commands.ClaimClaimed])
	suite.Equal(claims-1, outcomes[commands.ClaimAlreadyHeld])
	suite.Len(orderIDs, 1, "every claim returns the same order")

	var held int64
	suite.Require().NoError(db.Table("orders").Where("agent_id = ?", agent.String()).Count(&held).Error)
	suite.Equal(int64(1), held)
}
