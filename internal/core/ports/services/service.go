package services

// ServiceContainer holds instances of all the application services.
// Handlers and background workers reach the core only through it.
type ServiceContainer struct {
	Account    AccountSvcFacade
	Catalog    CatalogSvcFacade
	Market     MarketSvcFacade
	Bid        BidSvcFacade
	Presale    PresaleSvcFacade
	Deposit    DepositPollerSvc
	Withdrawal WithdrawalSvc
	Stats      StatsSvc
}
