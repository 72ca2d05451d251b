package srp_test

// Reference exchange computed independently of this package.
const (
	vecPool     = "ExamplePool"
	vecUser     = "alice"
	vecPassword = "correct horse battery staple"
	vecSalt     = "BEB25379D1A8581EB5A727673A2441EE"

	vecSmallA = "60975527035CF2AD1989806F0407210BC81EDC04E2762A56AFD529DDDA2D4393"
	vecSmallB = "E487CB59D31AC550471E81F00F6928E01DDA08E974A004F49E61F5D105284D20"

	vecA = "FA24C7DF648F8144BB7F2B7AE8A37796154B8B72DE4177EFEADC5D984901635A" +
		"96C118533B5032493D141511CDFC990EB9886FB6B4F50609F3CBC614BADDC7D8" +
		"B77DE896C588E902D31C1B27D07B2AFBD8964AAE3F61285D99D02CE24A215F21" +
		"817DD2ED93D10EE42C1686AB4B4C6AAF893269EBEDEBFD52BF5BB7AFC0C3B256" +
		"7BF4185B10D73EDE66AA7BEAFBC829746E3934B3C40FFED6E27E0A5423A10812" +
		"E90A22DDC4A0F28FC63961A6E2542665CC823FADC333D6CEC1279E5A4F8BE362" +
		"4F745381070545EE936C6A2A1BB7B002EBE9B09E2B2A604B10D0D807E2BF7E31" +
		"21C742AAC3311ADFC9BDB19353F76A632636917CF7D3D3E1DE95E5CFEE2B30C7" +
		"86F4FC78050AB4012DC3A8510BFF950558C70EE9F7AC4F4E4F19D794346AA429" +
		"9FBF0A539DC8C66DD94C76FBB0CDC9A0747017B149CFC53D1053B1B0FEC72499" +
		"3253C96463308D3C58CE417F1D79DBC47C12780E1AA56FBD6F407D36EC4961E3" +
		"B656C68298A611D59938CF8E9A1B421CEF804139BAE9C2CC182ED0D1D660C743"

	vecB = "376E618D91357CAFF5B122BB7148F4151611D14EE69BED8FB74A9DACD4A6513A" +
		"59F86F1F2807BD7ECCD35692396F281893E7B8569FB81B272C89C70D53F3EB77" +
		"25D6679138C13E50D7E71650D73EC2E88D697BDE09C7EFF72869D59E5A932183" +
		"33314EB3ED8297E07BB76892B2687A9418AA620B0230D84F5F633918B485B8A6" +
		"72013E30F4AC6238F8786F76C106D677994C22E88F170C3A0ED0E9C4D825FB33" +
		"1420E8C3804A99F29DC50AF4C3B6509D898CE68A8AF034B0D79BA35E0115E62A" +
		"5B2C3A24BB8FD1B49CCC8B7E4D0BE833DB0171723A13159BBDD6A49380E2F0DC" +
		"E4601910607047F7062DC3C5C5E18F2CE1E88A2CC6FD6197D074F1872817D049" +
		"9C5829C1C1E71FE13208D23BC917C6A69357856BCC0881C1E90073CE12739856" +
		"FEF5A04A5B638302B403AE3FAB55B8FC490BF9E82F39335BF8B6C76BCEBE15FA" +
		"85B2C9D97A4B6D755CE58FFCFB3A10225402FCF285A5088D0453247325B7FF3C" +
		"59C87B1B6A9A2FE5FFE876C931E2134EEF22B56AA30B23D9EDF78D5FAD5F6455"

	vecU   = "534124D2205D7811515C9DCC38171A21D810CB541D32EBE4DE2A6869D93DC6AC"
	vecX   = "FEFD472BF48E54B4B234D1BEB6AAC62FA3B972C2AF75B827B35A99EE4E861D44"
	vecKey = "D913AE48CDE20B231F3E32C6F7FC67EA"
	vecM1  = "9B0258EF6FFC40CC8EAE4997AB7C5CEAD465E7A019CE2FA68778CE53CDB84F6F"
	vecM2  = "514F1B1964DF7C0BE780E155D2F3D8131C14C74DFB4D8F0394B76AD44166642C"

	vecSecretBlock = "b3BhcXVlLXNlY3JldC1ibG9jaw=="
	vecTimestamp   = "Tue Sep 4 18:27:52 UTC 2018"
	vecSignature   = "fQrmzKQfuZKIiNNnvfqU5Il8l67mdE0CnQW9JlRnyg0="
)
