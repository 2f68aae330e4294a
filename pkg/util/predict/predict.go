package predict

/**
* Predict is a golang library for estimating the scores of EPL football matches
* from historical results. It owns the temporal feature engineering: turning a
* chronologically ordered ledger of match rows into leakage-free feature
* vectors that are defined identically at training time and at query time.
 */
