package config

import (
	"log"

	"github.com/elastic/go-elasticsearch/v8"
)

// ConnectElastic trả về nil nếu ELASTIC_ADDRESSES không được cấu hình
func ConnectElastic(cfg AppConfig) (*elasticsearch.Client, error) {
	if len(cfg.ElasticAddresses) == 0 {
		log.Println("ELASTIC_ADDRESSES not set, search falls back to the database")
		return nil, nil
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.ElasticAddresses,
		APIKey:    cfg.ElasticAPIKey,
	})
	if err != nil {
		return nil, err
	}

	res, err := es.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	log.Println("Elasticsearch connected:", res.Status())
	return es, nil
}
